package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/diverkids/diverkids-api/pkg/config"
	"github.com/diverkids/diverkids-api/pkg/logger"
)

// Service pushes derived event windows into an external calendar. It is
// strictly best-effort: CreateEvent reports the outcome but never returns an
// error, so a calendar outage can never fail a committed booking.
type Service interface {
	CreateEvent(ctx context.Context, ev Event) SyncResult
}

type Event struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
}

type SyncResult struct {
	Ok       bool
	EventID  string
	HTMLLink string
	Reason   string
}

const eventsURL = "https://www.googleapis.com/calendar/v3/calendars/%s/events"

// GoogleCalendar talks to the Calendar v3 REST API with an OAuth token
// previously minted out of band and stored in a token file.
type GoogleCalendar struct {
	cfg config.CalendarConfig

	initOnce  sync.Once
	client    *http.Client
	clientErr error
}

func NewGoogleCalendar(cfg config.CalendarConfig) *GoogleCalendar {
	return &GoogleCalendar{cfg: cfg}
}

type calendarEventBody struct {
	Summary     string        `json:"summary"`
	Description string        `json:"description"`
	Location    string        `json:"location"`
	Start       calendarPoint `json:"start"`
	End         calendarPoint `json:"end"`
}

type calendarPoint struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

func (g *GoogleCalendar) CreateEvent(ctx context.Context, ev Event) SyncResult {
	if !g.cfg.Enabled {
		return SyncResult{Ok: false, Reason: "calendar_not_configured"}
	}
	if ev.Start.IsZero() || ev.End.IsZero() {
		return SyncResult{Ok: false, Reason: "invalid_datetime"}
	}

	client, err := g.httpClient()
	if err != nil {
		logger.WarnContext(ctx, "calendar client unavailable", "error", err)
		return SyncResult{Ok: false, Reason: err.Error()}
	}

	body := calendarEventBody{
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		Start:       calendarPoint{DateTime: ev.Start.Format(time.RFC3339), TimeZone: g.cfg.Timezone},
		End:         calendarPoint{DateTime: ev.End.Format(time.RFC3339), TimeZone: g.cfg.Timezone},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return SyncResult{Ok: false, Reason: err.Error()}
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	url := fmt.Sprintf(eventsURL, g.cfg.CalendarID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return SyncResult{Ok: false, Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := client.Do(req)
	if err != nil {
		logger.WarnContext(ctx, "calendar event insert failed", "error", err)
		return SyncResult{Ok: false, Reason: err.Error()}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		raw, _ := io.ReadAll(res.Body)
		reason := fmt.Sprintf("calendar error: status=%d body=%s", res.StatusCode, string(raw))
		logger.WarnContext(ctx, "calendar event rejected", "status", res.StatusCode)
		return SyncResult{Ok: false, Reason: reason}
	}

	var created struct {
		ID       string `json:"id"`
		HTMLLink string `json:"htmlLink"`
	}
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		return SyncResult{Ok: false, Reason: err.Error()}
	}

	logger.InfoContext(ctx, "calendar event created", "event_id", created.ID)
	return SyncResult{Ok: true, EventID: created.ID, HTMLLink: created.HTMLLink}
}

// httpClient builds an oauth2-backed client from the credentials and token
// files. The token source refreshes expired tokens transparently. The client
// is shared by concurrent requests, so the init is a sync.Once, and it is
// bound to the background context rather than a request context that may be
// canceled before the next token refresh.
func (g *GoogleCalendar) httpClient() (*http.Client, error) {
	g.initOnce.Do(func() {
		creds, err := loadCredentials(g.cfg.CredentialsFile)
		if err != nil {
			g.clientErr = fmt.Errorf("calendar credentials: %w", err)
			return
		}
		tok, err := loadToken(g.cfg.TokenFile)
		if err != nil {
			g.clientErr = fmt.Errorf("calendar token: %w", err)
			return
		}
		ctx := context.Background()
		g.client = oauth2.NewClient(ctx, creds.TokenSource(ctx, tok))
	})
	return g.client, g.clientErr
}

func loadCredentials(path string) (*oauth2.Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file struct {
		Installed struct {
			ClientID     string `json:"client_id"`
			ClientSecret string `json:"client_secret"`
			TokenURI     string `json:"token_uri"`
		} `json:"installed"`
	}
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, err
	}
	if file.Installed.ClientID == "" {
		return nil, fmt.Errorf("no installed client in %s", path)
	}
	return &oauth2.Config{
		ClientID:     file.Installed.ClientID,
		ClientSecret: file.Installed.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: file.Installed.TokenURI},
		Scopes:       []string{"https://www.googleapis.com/auth/calendar.events"},
	}, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

var _ Service = (*GoogleCalendar)(nil)

// Disabled is a Service that reports calendar sync as not configured.
type Disabled struct{}

func (Disabled) CreateEvent(context.Context, Event) SyncResult {
	return SyncResult{Ok: false, Reason: "calendar_not_configured"}
}

var _ Service = Disabled{}
