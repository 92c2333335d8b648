package editor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KvizadSaderah/bg-real-estate-finder-sub001/internal/parser"
)

const testAPI = "http://admin.test"

func newTestClient(t *testing.T) *Client {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
	return NewClient(testAPI, 5*time.Second)
}

func TestSaveSiteCreatesWithPOST(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder("POST", testAPI+"/api/admin/parser/sites",
		httpmock.NewStringResponder(201, `{"success":true,"data":{"id":"abc","name":"Luximmo"}}`))

	cfg := parser.NewSiteConfig()
	cfg.Name = "Luximmo"
	saved, err := client.SaveSite(context.Background(), "", cfg)
	require.NoError(t, err)
	assert.Equal(t, "abc", saved.ID)

	info := httpmock.GetCallCountInfo()
	assert.Equal(t, 1, info["POST "+testAPI+"/api/admin/parser/sites"])
}

func TestSaveSiteUpdatesWithPUT(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder("PUT", testAPI+"/api/admin/parser/sites/abc",
		httpmock.NewStringResponder(200, `{"success":true,"data":{"id":"abc","name":"Renamed"}}`))

	cfg := parser.NewSiteConfig()
	cfg.Name = "Renamed"
	saved, err := client.SaveSite(context.Background(), "abc", cfg)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", saved.Name)

	info := httpmock.GetCallCountInfo()
	assert.Equal(t, 1, info["PUT "+testAPI+"/api/admin/parser/sites/abc"])
	assert.Zero(t, info["POST "+testAPI+"/api/admin/parser/sites"])
}

func TestServerFailureSurfacesAsAPIError(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder("POST", testAPI+"/api/admin/parser/sites",
		httpmock.NewStringResponder(400, `{"success":false,"error":"site configuration is invalid","details":{"name":"name cannot be empty"}}`))

	_, err := client.SaveSite(context.Background(), "", parser.NewSiteConfig())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "site configuration is invalid", apiErr.Message)
	assert.Equal(t, map[string]string{"name": "name cannot be empty"}, apiErr.Details)
}

func TestServerFailureWithoutMessageGetsDefault(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder("DELETE", testAPI+"/api/admin/parser/sites/abc",
		httpmock.NewStringResponder(500, `{"success":false}`))

	err := client.DeleteSite(context.Background(), "abc")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Request failed", apiErr.Message)
}

func TestTransportFailureIsNotAPIError(t *testing.T) {
	client := newTestClient(t)
	// No responder registered, so the connection is refused.

	_, err := client.ListSites(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestToggleSiteReturnsMessage(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder("POST", testAPI+"/api/admin/parser/sites/abc/toggle",
		httpmock.NewStringResponder(200, `{"success":true,"message":"Site disabled"}`))

	message, err := client.ToggleSite(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "Site disabled", message)
}

func TestTestSelectorsDecodesResults(t *testing.T) {
	client := newTestClient(t)
	httpmock.RegisterResponder("POST", testAPI+"/api/admin/parser/test-selectors",
		httpmock.NewStringResponder(200, `{"success":true,"data":{"results":{
			"title":{"found":true,"value":"Villa in Sofia","selector":"h1"},
			"price":{"found":false,"error":"no element matched","selector":".price strong"}
		}}}`))

	selectors := parser.SelectorSet{Fields: map[string]parser.FieldSelector{
		"title": {Selector: "h1", Attribute: parser.AttrText},
		"price": {Selector: ".price strong", Attribute: parser.AttrText},
	}}
	results, err := client.TestSelectors(context.Background(), "https://example.com", "", false, selectors)
	require.NoError(t, err)

	assert.True(t, results["title"].Found)
	assert.Equal(t, "Villa in Sofia", results["title"].Value)
	assert.False(t, results["price"].Found)
	assert.Equal(t, "no element matched", results["price"].Error)
}

func TestImportPostsRawConfig(t *testing.T) {
	client := newTestClient(t)
	var captured map[string]json.RawMessage
	httpmock.RegisterResponder("POST", testAPI+"/api/admin/parser/import",
		func(req *http.Request) (*http.Response, error) {
			if err := json.NewDecoder(req.Body).Decode(&captured); err != nil {
				return nil, err
			}
			return httpmock.NewStringResponse(200, `{"success":true}`), nil
		})

	raw := json.RawMessage(`{"name":"Luximmo","baseUrl":"https://www.luximmo.com"}`)
	require.NoError(t, client.Import(context.Background(), raw))
	assert.JSONEq(t, string(raw), string(captured["config"]))
}
