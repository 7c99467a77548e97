package sw360_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	controller "github.com/m-mizutani/sw360ctl/pkg/controller/http"
	"github.com/m-mizutani/sw360ctl/pkg/domain/model"
	"github.com/m-mizutani/sw360ctl/pkg/infra/sw360"
)

// TestClient_AgainstFakeCatalog runs the client against the fake SW360 server
func TestClient_AgainstFakeCatalog(t *testing.T) {
	ctx := context.Background()
	catalog := controller.NewCatalog()

	server, err := controller.NewServer(ctx, catalog, controller.WithToken(testToken))
	gt.NoError(t, err)
	ts := httptest.NewServer(server.Handler)
	defer ts.Close()

	client, err := sw360.New(ts.URL, testToken)
	gt.NoError(t, err)
	gt.NoError(t, client.Login(ctx))

	created, err := client.CreateRelease(ctx, "Tethys.Logging", "1.4.0", "C1", model.Release{
		model.ExternalIDsKey: map[string]any{"X": "1"},
	})
	gt.NoError(t, err)

	href := created["_links"].(map[string]any)["self"].(map[string]any)["href"].(string)
	byURL, err := client.GetReleaseByURL(ctx, href)
	gt.NoError(t, err)
	gt.Value(t, byURL.ExternalIDs()).Equal(map[string]string{"X": "1"})

	list, err := client.GetReleasesByName(ctx, "Tethys.Logging")
	gt.NoError(t, err)
	gt.A(t, list.Releases).Length(1)

	list, err = client.GetReleasesByExternalID(ctx, "X", "1")
	gt.NoError(t, err)
	gt.A(t, list.Releases).Length(1)

	id := href[len(client.URL()+"resource/api/releases/"):]

	old, err := client.UpdateReleaseExternalID(ctx, "X", "2", id, model.UpdateModeOverwrite)
	gt.NoError(t, err)
	gt.Value(t, old).Equal("1")

	stored, ok := catalog.Get(id)
	gt.True(t, ok)
	gt.Value(t, stored.ExternalIDs()).Equal(map[string]string{"X": "2"})
	gt.Value(t, stored.Name()).Equal("Tethys.Logging")

	_, err = client.DeleteRelease(ctx, id)
	gt.NoError(t, err)

	release, err := client.GetRelease(ctx, id)
	gt.Error(t, err)
	gt.True(t, release == nil)
}
