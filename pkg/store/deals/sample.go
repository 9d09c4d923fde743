package deals

import (
	"time"

	"github.com/de-tools/revops-pilot/pkg/models/store"
)

func daysAgo(now time.Time, days int) time.Time {
	return now.AddDate(0, 0, -days)
}

// SampleHubspotDeals returns the demo CRM pipeline relative to now
func SampleHubspotDeals(now time.Time) []store.HubspotDeal {
	return []store.HubspotDeal{
		{"HS-001", "Acme Corp Enterprise Deal", 450000, "proposal", "john.smith@acme.com", daysAgo(now, 45), daysAgo(now, 2)},
		{"HS-002", "TechCorp Cloud Migration", 320000, "evaluation", "jane.doe@techcorp.com", daysAgo(now, 30), daysAgo(now, 1)},
		{"HS-003", "Global Industries Expansion", 550000, "closed_won", "mike.jones@global.com", daysAgo(now, 60), daysAgo(now, 5)},
		{"HS-004", "StartupX Series A", 150000, "closed_lost", "alice.wang@startupx.com", daysAgo(now, 15), daysAgo(now, 8)},
		{"HS-005", "DataFlow Analytics Platform", 280000, "qualification", "bob.chen@dataflow.com", daysAgo(now, 20), daysAgo(now, 3)},
	}
}

// SampleSheetsDeals returns the demo spreadsheet pipeline relative to now
func SampleSheetsDeals(now time.Time) []store.SheetsDeal {
	return []store.SheetsDeal{
		{"SH-001", "Enterprise Solutions LLC", 400000, "proposal", "sarah.marketing@ent.com", daysAgo(now, 40), daysAgo(now, 1)},
		{"SH-002", "CloudFirst Consulting", 210000, "evaluation", "david.sales@cloudfirst.com", daysAgo(now, 25), daysAgo(now, 2)},
		{"SH-003", "SecureNet Security", 180000, "closed_won", "emily.account@securenet.com", daysAgo(now, 50), daysAgo(now, 10)},
		{"SH-004", "FinanceHub Pro", 320000, "qualification", "robert.dev@financehub.com", daysAgo(now, 18), daysAgo(now, 1)},
		{"SH-005", "HRFlow Automation", 95000, "closed_lost", "lisa.ops@hrflow.com", daysAgo(now, 22), daysAgo(now, 7)},
	}
}
