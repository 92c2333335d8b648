package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/KvizadSaderah/bg-real-estate-finder-sub001/internal/parser"
	"github.com/KvizadSaderah/bg-real-estate-finder-sub001/internal/selectortest"
)

// Severity tags a notification for presentation.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Notification is a transient, toast-style user message.
type Notification struct {
	Severity Severity
	Message  string
}

// Notifier receives user-facing notifications.
type Notifier interface {
	Notify(n Notification)
}

// Confirmer guards destructive actions behind an interactive prompt.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ListView shows the current site list after a refresh.
type ListView interface {
	ShowSites(sites []*parser.SiteConfig)
}

// ResultView shows selector test results.
type ResultView interface {
	ShowResults(results map[string]selectortest.FieldResult)
}

// Editor drives the configuration workflow: it owns the session state
// machine and the form, talks to the API through the client and reflects
// every outcome through the views. State is transient; the server stays the
// source of truth and the list is re-fetched after every mutation.
type Editor struct {
	client  *Client
	notify  Notifier
	list    ListView
	results ResultView
	confirm Confirmer
	logger  *zap.Logger

	session Session
	form    *Form
}

func NewEditor(client *Client, notify Notifier, list ListView, results ResultView, confirm Confirmer, logger *zap.Logger) *Editor {
	return &Editor{
		client:  client,
		notify:  notify,
		list:    list,
		results: results,
		confirm: confirm,
		logger:  logger,
		form:    DefaultForm(),
	}
}

// Form exposes the live form bindings for editing.
func (e *Editor) Form() *Form {
	return e.form
}

// Session exposes the current modal state, mainly for tests.
func (e *Editor) Session() Session {
	return e.session
}

// Open transitions to the Open state. With a site ID the site is fetched
// and the form populated from it; with an empty ID the form resets to
// defaults for a new site.
func (e *Editor) Open(ctx context.Context, siteID string) error {
	e.form = DefaultForm()
	if siteID != "" {
		site, err := e.client.GetSite(ctx, siteID)
		if err != nil {
			e.reportError("Failed to load site", err)
			return err
		}
		e.form.Populate(site)
	}
	e.session.OpenFor(siteID)
	return nil
}

// Close abandons the session without saving.
func (e *Editor) Close() {
	e.session.Close()
}

// Save collects the form and creates or updates the site depending on the
// session's editing target. On success the session closes and the list is
// refreshed.
func (e *Editor) Save(ctx context.Context) error {
	if !e.session.IsOpen() {
		return errors.New("no editing session")
	}
	cfg := e.form.Collect()
	saved, err := e.client.SaveSite(ctx, e.session.EditingID(), cfg)
	if err != nil {
		e.reportError("Failed to save site", err)
		return err
	}
	e.notify.Notify(Notification{SeveritySuccess, fmt.Sprintf("Site %q saved", saved.Name)})
	e.session.Close()
	return e.Refresh(ctx)
}

// TestSelectors runs the form's current selectors against testURL. A
// missing URL is rejected locally, before any request is made.
func (e *Editor) TestSelectors(ctx context.Context, testURL string, render bool) error {
	testURL = strings.TrimSpace(testURL)
	if testURL == "" {
		e.notify.Notify(Notification{SeverityError, "Test URL is required"})
		return nil
	}
	cfg := e.form.Collect()
	results, err := e.client.TestSelectors(ctx, testURL, cfg.UserAgent, render, cfg.Selectors)
	if err != nil {
		e.reportError("Selector test failed", err)
		return err
	}
	e.results.ShowResults(results)
	return nil
}

// Toggle flips a site's enabled flag and refreshes the list.
func (e *Editor) Toggle(ctx context.Context, siteID string) error {
	message, err := e.client.ToggleSite(ctx, siteID)
	if err != nil {
		e.reportError("Failed to toggle site", err)
		return err
	}
	if message == "" {
		message = "Site toggled"
	}
	e.notify.Notify(Notification{SeveritySuccess, message})
	return e.Refresh(ctx)
}

// Delete removes a site after interactive confirmation. A declined prompt
// issues no request. Deleting the site currently being edited closes the
// session.
func (e *Editor) Delete(ctx context.Context, siteID string) error {
	if !e.confirm.Confirm(fmt.Sprintf("Delete parser site %s?", siteID)) {
		return nil
	}
	if err := e.client.DeleteSite(ctx, siteID); err != nil {
		e.reportError("Failed to delete site", err)
		return err
	}
	if e.session.IsOpen() && e.session.EditingID() == siteID {
		e.session.Close()
	}
	e.notify.Notify(Notification{SeveritySuccess, "Site deleted"})
	return e.Refresh(ctx)
}

// Export downloads the configuration document to path.
func (e *Editor) Export(ctx context.Context, path string) error {
	f, err := os.Create(path)
	if err != nil {
		e.reportError("Failed to write export file", err)
		return err
	}
	defer f.Close()

	if err := e.client.Export(ctx, f); err != nil {
		e.reportError("Export failed", err)
		return err
	}
	e.notify.Notify(Notification{SeveritySuccess, fmt.Sprintf("Configuration exported to %s", path)})
	return nil
}

// ImportFile uploads a local JSON configuration file. A file that is not
// valid JSON is rejected locally with no network request.
func (e *Editor) ImportFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		e.reportError("Failed to read import file", err)
		return err
	}
	if !json.Valid(data) {
		e.notify.Notify(Notification{SeverityError, "Invalid JSON file"})
		return nil
	}
	if err := e.client.Import(ctx, data); err != nil {
		e.reportError("Import failed", err)
		return err
	}
	e.notify.Notify(Notification{SeveritySuccess, "Configuration imported"})
	return e.Refresh(ctx)
}

// Refresh re-fetches the site list and shows it.
func (e *Editor) Refresh(ctx context.Context) error {
	sites, err := e.client.ListSites(ctx)
	if err != nil {
		e.reportError("Failed to load sites", err)
		return err
	}
	e.list.ShowSites(sites)
	return nil
}

// reportError surfaces a failure: server-reported errors show their own
// message with field details logged only; transport errors show the
// generic message.
func (e *Editor) reportError(generic string, err error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if len(apiErr.Details) > 0 {
			e.logger.Warn("server reported validation details",
				zap.String("error", apiErr.Message),
				zap.Any("details", apiErr.Details))
		}
		message := apiErr.Message
		if message == "" {
			message = generic
		}
		e.notify.Notify(Notification{SeverityError, message})
		return
	}
	e.logger.Error(generic, zap.Error(err))
	e.notify.Notify(Notification{SeverityError, generic})
}
