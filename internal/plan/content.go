// Package plan holds the 90-day local SEO schedule: the static content of
// each week and the date arithmetic that picks the current week.
package plan

import (
	"fmt"
	"math"
	"strings"
)

// Plan is the content mailed for one week.
type Plan struct {
	Title   string
	Actions []string
}

// block covers the weeks from..to (inclusive). Titles containing a %d verb
// get the requested week number embedded.
type block struct {
	from, to int
	title    string
	actions  []string
}

// schedule is matched in order. The first block is open-ended below so that
// callers passing 0 or a negative week still get the foundations content.
var schedule = []block{
	{
		from: math.MinInt, to: 1,
		title: "Semaine 1 - Fondations",
		actions: []string{
			"Verifier sitemap, indexation, pages exclues, canonical, hreflang dans GSC.",
			"Verifier et completer Google Business Profile (categories, services, horaires, photos).",
			"Aligner NAP partout (nom, adresse, telephone).",
			"Mettre en place un tableau de bord KPI.",
		},
	},
	{
		from: 2, to: 2,
		title: "Semaine 2 - Quick wins techniques",
		actions: []string{
			"Corriger erreurs d'indexation (404, soft 404, doublons).",
			"Renforcer maillage interne Home/Location/Blog vers pages locales.",
			"Ajouter schema LocalBusiness + Service sur pages locales.",
			"Verifier robots.txt et sitemap.xml.",
		},
	},
	{
		from: 3, to: 3,
		title: "Semaine 3 - Contenu local transactionnel",
		actions: []string{
			"Publier page: location-velo-electrique-marseillan.",
			"Publier page: reparation-velo-marseillan.",
			"Ajouter FAQ locale (3 a 5 Q/R) sur pages ville.",
			"Ajouter preuves locales (photos, itineraires, points de repere).",
		},
	},
	{
		from: 4, to: 4,
		title: "Semaine 4 - Acceleration GBP",
		actions: []string{
			"Lancer cadence avis: 5 a 7 demandes/semaine.",
			"Repondre a 100% des avis.",
			"Publier 1 post GBP cette semaine.",
			"Ajouter 10 a 15 photos geolocalisees.",
		},
	},
	{
		from: 5, to: 6,
		title: "Semaine %d - Autorite locale",
		actions: []string{
			"Obtenir 2 a 3 backlinks locaux de qualite cette semaine.",
			"Publier 1 contenu blog local a intention commerciale.",
			"Ajouter liens internes vers pages locales/services.",
		},
	},
	{
		from: 7, to: 8,
		title: "Semaine %d - Extension geographique",
		actions: []string{
			"Creer 1 nouvelle page locale sur une zone rentable.",
			"Creer 1 page saisonniere locale.",
			"Optimiser title/meta des pages qui ont CTR faible dans GSC.",
		},
	},
	{
		from: 9, to: 10,
		title: "Semaine %d - Optimisation conversion",
		actions: []string{
			"Renforcer CTA locaux (appel, WhatsApp, reserver).",
			"Tester une variation du hero local.",
			"Ajouter preuve sociale locale (avis, cas clients, photos).",
		},
	},
	{
		from: 11, to: 12,
		title: "Semaine %d - Consolidation",
		actions: []string{
			"Reaudit complet GSC + GBP.",
			"Fusionner/supprimer pages faibles.",
			"Definir plan trimestriel suivant.",
		},
	},
}

// monthlyRhythm applies once the 12-week programme is over.
var monthlyRhythm = block{
	title: "Semaine %d - Rythme mensuel standard",
	actions: []string{
		"Publier 1 contenu local cette semaine (objectif 4/mois).",
		"Publier 1 post GBP cette semaine (objectif 4/mois).",
		"Demander 2 a 3 avis cette semaine (objectif 8 a 12/mois).",
		"Chercher 1 backlink local de qualite cette semaine (objectif 3 a 5/mois).",
		"Executer mini sprint technique (indexation/perf/schema).",
	},
}

// ForWeek returns the content for week. It never fails: weeks past the
// schedule fall back to the standard monthly rhythm.
func ForWeek(week int) Plan {
	for _, b := range schedule {
		if week >= b.from && week <= b.to {
			return b.plan(week)
		}
	}
	return monthlyRhythm.plan(week)
}

func (b block) plan(week int) Plan {
	title := b.title
	if strings.Contains(title, "%d") {
		title = fmt.Sprintf(title, week)
	}
	// Callers get their own copy; the table stays immutable.
	actions := make([]string, len(b.actions))
	copy(actions, b.actions)
	return Plan{Title: title, Actions: actions}
}
