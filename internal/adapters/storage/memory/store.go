// Package memory provides non-persistent stores for local mode and tests.
package memory

import "github.com/PabloGalante/taborra-agent/internal/domain"

// Store bundles the in-memory stores into a domain.Store.
type Store struct {
	*UserStore
	*MessageStore
	*RatingStore
	*ReferenceStore
}

func NewStore(business domain.BusinessInfo) *Store {
	return &Store{
		UserStore:      NewUserStore(),
		MessageStore:   NewMessageStore(),
		RatingStore:    NewRatingStore(),
		ReferenceStore: NewReferenceStore(business),
	}
}

// DemoBusinessInfo is the business context used by local mode.
func DemoBusinessInfo() domain.BusinessInfo {
	return domain.BusinessInfo{
		domain.BizCompanyName:    "Taborra Alarmas",
		domain.BizAddress:        "Av. San Martín 1234, Las Parejas, Santa Fe",
		domain.BizHours:          "Lunes a viernes de 8 a 12 y de 15 a 19 hs",
		domain.BizEmail:          "info@taborra.com.ar",
		domain.BizPhone1:         "03471-420000",
		domain.BizWhatsApp:       "+54 9 3471 500000",
		domain.BizTechSupport:    "+54 9 3471 500001",
		domain.BizSales:          "+54 9 3471 500002",
		domain.BizAdministration: "+54 9 3471 500003",
		domain.BizBilling:        "+54 9 3471 500004",
		domain.BizMonitoring:     "0800-555-2424",
	}
}

var _ domain.Store = (*Store)(nil)
