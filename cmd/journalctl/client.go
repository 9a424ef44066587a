package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
)

func newClient(api, token string) *resty.Client {
	c := resty.New().SetBaseURL(api).SetTimeout(60 * time.Second)
	if token != "" {
		c.SetAuthToken(token)
	}
	return c
}

func fail(resp *resty.Response) error {
	return fmt.Errorf("%s: %s", resp.Status(), resp.String())
}

func runSignup(api, email, password string, w io.Writer) error {
	var out struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	resp, err := newClient(api, "").R().
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		Post("/api/auth/signup")
	if err != nil {
		return err
	}
	if resp.StatusCode() != 201 {
		return fail(resp)
	}
	fmt.Fprintf(w, "userId: %s\ntoken: %s\n", out.UserID, out.Token)
	return nil
}

func runLogin(api, email, password string, w io.Writer) error {
	var out struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	resp, err := newClient(api, "").R().
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&out).
		Post("/api/auth/login")
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fail(resp)
	}
	fmt.Fprintf(w, "userId: %s\ntoken: %s\n", out.UserID, out.Token)
	return nil
}

type areaJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
}

func runAreasList(api, token string, w io.Writer) error {
	var out struct {
		GrowthAreas []areaJSON `json:"growthAreas"`
	}
	resp, err := newClient(api, token).R().SetResult(&out).Get("/api/user/growth-areas")
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fail(resp)
	}
	for _, a := range out.GrowthAreas {
		state := "active"
		if !a.IsActive {
			state = "inactive"
		}
		fmt.Fprintf(w, "%s  %s (%s)  %s\n", a.ID, a.Name, state, a.Description)
	}
	return nil
}

// runAreasAdd appends one area by re-posting the full list, which is the
// replace contract of the growth-areas endpoint.
func runAreasAdd(api, token, name, description string, w io.Writer) error {
	client := newClient(api, token)

	var current struct {
		GrowthAreas []areaJSON `json:"growthAreas"`
	}
	resp, err := client.R().SetResult(&current).Get("/api/user/growth-areas")
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fail(resp)
	}

	next := append(current.GrowthAreas, areaJSON{Name: name, Description: description, IsActive: true})
	resp, err = client.R().
		SetBody(map[string]interface{}{"growthAreas": next}).
		Post("/api/user/growth-areas")
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fail(resp)
	}
	fmt.Fprintf(w, "added %s\n", name)
	return nil
}

func runEntryAdd(api, token, text string, w io.Writer) error {
	var out struct {
		EntryID        string          `json:"entryId"`
		GrowthNote     json.RawMessage `json:"growthNote"`
		ProcessingTime float64         `json:"processingTime"`
	}
	resp, err := newClient(api, token).R().
		SetBody(map[string]string{"text": text}).
		SetResult(&out).
		Post("/api/journal")
	if err != nil {
		return err
	}
	if resp.StatusCode() != 201 {
		return fail(resp)
	}
	fmt.Fprintf(w, "entryId: %s (%.2fs)\n", out.EntryID, out.ProcessingTime)
	pretty, err := json.MarshalIndent(out.GrowthNote, "", "  ")
	if err == nil {
		fmt.Fprintln(w, string(pretty))
	}
	return nil
}

func runEntries(api, token string, limit, offset int, w io.Writer) error {
	var out struct {
		Entries []struct {
			EntryID   string    `json:"entryId"`
			RawText   string    `json:"rawText"`
			CreatedAt time.Time `json:"createdAt"`
		} `json:"entries"`
		Total int `json:"total"`
	}
	resp, err := newClient(api, token).R().
		SetQueryParam("limit", fmt.Sprint(limit)).
		SetQueryParam("offset", fmt.Sprint(offset)).
		SetResult(&out).
		Get("/api/journal")
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fail(resp)
	}
	fmt.Fprintf(w, "total: %d\n", out.Total)
	for _, e := range out.Entries {
		text := e.RawText
		if len(text) > 60 {
			text = text[:60] + "..."
		}
		fmt.Fprintf(w, "%s  %s  %s\n", e.EntryID, e.CreatedAt.Format("2006-01-02"), text)
	}
	return nil
}

func runTimeline(api, token, area string, w io.Writer) error {
	resp, err := newClient(api, token).R().Get("/api/growth/timeline/" + area)
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fail(resp)
	}
	return printJSON(w, resp.Body())
}

func runMemory(api, token string, w io.Writer) error {
	resp, err := newClient(api, token).R().Get("/api/growth/memory")
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fail(resp)
	}
	return printJSON(w, resp.Body())
}

func runSummary(api, token string, w io.Writer) error {
	resp, err := newClient(api, token).R().Get("/api/growth/summary")
	if err != nil {
		return err
	}
	if resp.StatusCode() != 200 {
		return fail(resp)
	}
	return printJSON(w, resp.Body())
}

func printJSON(w io.Writer, body []byte) error {
	var buf interface{}
	if err := json.Unmarshal(body, &buf); err != nil {
		fmt.Fprintln(w, string(body))
		return nil
	}
	pretty, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(pretty))
	return nil
}
