package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory321/threadfolio/internal/models"
)

func TestSendPostsFormWithBasicAuth(t *testing.T) {
	var gotPath, gotTo, gotFrom, gotBody string
	var gotUser, gotPass string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		gotTo = r.PostForm.Get("To")
		gotFrom = r.PostForm.Get("From")
		gotBody = r.PostForm.Get("Body")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM123","status":"queued"}`))
	}))
	defer srv.Close()

	c := NewSMSClient("AC42", "secret", "+15550001111", srv.URL)
	err := c.Send(context.Background(), "+15552223333", "See you tomorrow")
	require.NoError(t, err)

	assert.Equal(t, "/2010-04-01/Accounts/AC42/Messages.json", gotPath)
	assert.Equal(t, "AC42", gotUser)
	assert.Equal(t, "secret", gotPass)
	assert.Equal(t, "+15552223333", gotTo)
	assert.Equal(t, "+15550001111", gotFrom)
	assert.Equal(t, "See you tomorrow", gotBody)
}

func TestSendSurfacesProviderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error_message":"The 'To' number is not valid"}`))
	}))
	defer srv.Close()

	c := NewSMSClient("AC42", "secret", "+15550001111", srv.URL)
	err := c.Send(context.Background(), "nonsense", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid")
}

func TestUnconfiguredClientLogsOnly(t *testing.T) {
	c := NewSMSClient("", "", "", "https://api.twilio.com")
	assert.False(t, c.Enabled())
	assert.NoError(t, c.Send(context.Background(), "+15552223333", "hello"))
}

func TestReminderBody(t *testing.T) {
	appt := &models.Appointment{
		Date:      time.Date(2026, time.September, 3, 0, 0, 0, 0, time.UTC),
		StartTime: "14:30",
		Location:  "Studio B",
	}
	msg := Reminder("Hemline Atelier", appt)
	assert.Equal(t, "Reminder: you have an appointment with Hemline Atelier on Sep 3, 2026 at 14:30 (Studio B).", msg)

	appt.Location = ""
	msg = Reminder("", appt)
	assert.Equal(t, "Reminder: you have an appointment with your seamstress on Sep 3, 2026 at 14:30.", msg)
}
