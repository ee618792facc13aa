// Package digest turns a week's plan into the subject and plain-text body
// of the weekly email.
package digest

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"seo-weekly-mail/internal/models"
	"seo-weekly-mail/internal/plan"
)

// KPIReminders are appended to every digest.
var KPIReminders = []string{
	"- Clics, impressions, CTR, position (GSC)",
	"- Vues profil, appels, itineraire, clics site (GBP)",
	"- Conversions locales (appel/WhatsApp/reservation)",
}

// Subject builds "<prefix> - semaine <week>".
func Subject(prefix string, week int) string {
	return fmt.Sprintf("%s - semaine %d", prefix, week)
}

// Body renders the plain-text digest. The section order is fixed:
// greeting, week and theme, numbered actions, KPI reminders, plan reference,
// signature.
func Body(week int, title string, actions []string, planRef string) string {
	lines := []string{
		"Bonjour Sebastien,",
		"",
		fmt.Sprintf("Voici le plan SEO a executer pour la semaine %d.", week),
		fmt.Sprintf("Theme: %s", title),
		"",
		"Actions prioritaires:",
	}
	for i, action := range actions {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, action))
	}
	lines = append(lines, "", "Rappels KPI a suivre cette semaine:")
	lines = append(lines, KPIReminders...)
	lines = append(lines,
		"",
		fmt.Sprintf("Reference complete du plan: %s", planRef),
		"",
		"Cordialement,",
		"Assistant SEO",
	)
	return strings.Join(lines, "\n")
}

// Compose builds the message for week. From and To are left for the
// dispatcher to fill from the mail configuration.
func Compose(week int, subjectPrefix, planRef string) models.Message {
	p := plan.ForWeek(week)
	return models.Message{
		ID:      uuid.NewString(),
		Subject: Subject(subjectPrefix, week),
		Body:    Body(week, p.Title, p.Actions, planRef),
		Week:    week,
	}
}
