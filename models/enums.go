package models

// ShareOrigin records how a share lot came to exist: bought with cash
// or minted from an accumulated dividend balance.
type ShareOrigin string

const (
	ShareOriginPurchased  ShareOrigin = "Purchased"
	ShareOriginReinvested ShareOrigin = "Reinvested"
)
