package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"weddingsite/internal/domain"
)

func TestTemplateRenderer_Render(t *testing.T) {
	r := NewTemplateRenderer()

	tests := []struct {
		name        string
		template    string
		data        any
		wantSubject string
		wantInText  []string
	}{
		{
			name:        "invitation",
			template:    "invitation",
			data:        &domain.InvitationEmailData{FirstName: "Ann", RSVPURL: "https://w.example/rsvp/abc", PortalURL: "https://w.example/guest-portal/def"},
			wantSubject: "You're invited, Ann! Please RSVP",
			wantInText:  []string{"https://w.example/rsvp/abc", "https://w.example/guest-portal/def"},
		},
		{
			name:        "reminder",
			template:    "reminder",
			data:        &domain.ReminderEmailData{FirstName: "Ann", RSVPURL: "https://w.example/rsvp/abc"},
			wantSubject: "Reminder: please RSVP, Ann",
			wantInText:  []string{"https://w.example/rsvp/abc"},
		},
		{
			name:        "confirmation attending",
			template:    "rsvp_confirmation",
			data:        &domain.RSVPConfirmationEmailData{FirstName: "Ann", Attending: true, PartySize: 3, Message: "yay"},
			wantSubject: "See you at the wedding, Ann!",
			wantInText:  []string{"party of 3", "Your message: yay"},
		},
		{
			name:        "confirmation declined",
			template:    "rsvp_confirmation",
			data:        &domain.RSVPConfirmationEmailData{FirstName: "Ann"},
			wantSubject: "Thanks for letting us know, Ann",
			wantInText:  []string{"will miss you"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, html, text, err := r.Render(tt.template, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSubject, subject)
			assert.NotEmpty(t, html)
			for _, s := range tt.wantInText {
				assert.Contains(t, text, s)
			}
		})
	}
}

func TestTemplateRenderer_Render_unknownTemplate(t *testing.T) {
	_, _, _, err := NewTemplateRenderer().Render("does_not_exist", nil)
	require.Error(t, err)
}
