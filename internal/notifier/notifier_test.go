package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aleister1102/grcdigest/internal/config"
	"github.com/aleister1102/grcdigest/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type webhookRecorder struct {
	mu       sync.Mutex
	payloads []models.DiscordMessagePayload
	status   int
}

func (w *webhookRecorder) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	w.mu.Lock()
	defer w.mu.Unlock()
	body, _ := io.ReadAll(r.Body)
	var p models.DiscordMessagePayload
	_ = json.Unmarshal(body, &p)
	w.payloads = append(w.payloads, p)
	if w.status != 0 {
		rw.WriteHeader(w.status)
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}

func completedSummary() models.RunSummaryData {
	s := models.GetDefaultRunSummaryData()
	s.RunID = "run-1"
	s.Mode = "onetime"
	s.Status = models.RunStatusCompleted
	s.TotalRecords = 120
	s.InScopeFindings = 80
	s.Owners = 12
	s.OverdueFindings = 5
	s.Duration = 90 * time.Second
	return s
}

func TestDiscordNotifier_SendNotification(t *testing.T) {
	rec := &webhookRecorder{}
	server := httptest.NewServer(rec)
	defer server.Close()

	dn := NewDiscordNotifier(zerolog.Nop(), server.Client())
	payload := FormatRunCompleteMessage(completedSummary(), config.NewDefaultNotificationConfig())

	require.NoError(t, dn.SendNotification(context.Background(), server.URL, payload))
	require.Len(t, rec.payloads, 1)

	got := rec.payloads[0]
	assert.Equal(t, DiscordUsername, got.Username)
	require.Len(t, got.Embeds, 1)
	assert.Equal(t, "Findings digest completed", got.Embeds[0].Title)
	assert.Equal(t, SuccessEmbedColor, got.Embeds[0].Color)

	fields := map[string]string{}
	for _, f := range got.Embeds[0].Fields {
		fields[f.Name] = f.Value
	}
	assert.Equal(t, "80", fields["Findings"])
	assert.Equal(t, "12", fields["Owners"])
	assert.Equal(t, "5", fields["Overdue"])
}

func TestDiscordNotifier_EmptyURLIsNoop(t *testing.T) {
	dn := NewDiscordNotifier(zerolog.Nop(), nil)
	assert.NoError(t, dn.SendNotification(context.Background(), "", models.DiscordMessagePayload{}))
}

func TestDiscordNotifier_Non2xx(t *testing.T) {
	server := httptest.NewServer(&webhookRecorder{status: http.StatusBadRequest})
	defer server.Close()

	err := NewDiscordNotifier(zerolog.Nop(), server.Client()).SendNotification(context.Background(), server.URL, models.DiscordMessagePayload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestNotificationHelper_RespectsSwitches(t *testing.T) {
	rec := &webhookRecorder{}
	server := httptest.NewServer(rec)
	defer server.Close()

	cfg := config.NewDefaultNotificationConfig()
	cfg.DiscordWebhookURL = server.URL
	cfg.MentionRoleIDs = []string{"42"}
	helper := NewNotificationHelper(NewDiscordNotifier(zerolog.Nop(), server.Client()), cfg, zerolog.Nop())

	// success notifications are off by default
	helper.SendRunCompletionNotification(context.Background(), completedSummary())
	assert.Empty(t, rec.payloads)

	failed := completedSummary()
	failed.Status = models.RunStatusFailed
	failed.ErrorMessages = []string{"record count does not match totalCount: 5 != 4"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	helper.SendRunCompletionNotification(ctx, failed)

	require.Len(t, rec.payloads, 1)
	got := rec.payloads[0]
	assert.True(t, strings.HasPrefix(got.Content, "<@&42>"))
	require.NotNil(t, got.AllowedMentions)
	assert.Equal(t, []string{"42"}, got.AllowedMentions.Roles)
	assert.Equal(t, ErrorEmbedColor, got.Embeds[0].Color)
	assert.Contains(t, got.Embeds[0].Fields[0].Value, "5 != 4")
}

func TestNotificationHelper_WithoutWebhook(t *testing.T) {
	helper := NewNotificationHelper(NewDiscordNotifier(zerolog.Nop(), nil), config.NewDefaultNotificationConfig(), zerolog.Nop())
	helper.SendRunCompletionNotification(context.Background(), completedSummary())
}

func TestFormatErrors(t *testing.T) {
	assert.Equal(t, "unknown error", formatErrors(nil))

	out := formatErrors([]string{"a", "b", "c", "d", "e"})
	assert.Contains(t, out, "- a")
	assert.Contains(t, out, "... and 2 more")
	assert.NotContains(t, out, "- d")

	long := formatErrors([]string{strings.Repeat("x", 1000)})
	assert.LessOrEqual(t, len(long), MaxErrorTextLength)
	assert.True(t, strings.HasSuffix(long, "..."))
}
