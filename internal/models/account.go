package models

import "time"

// Account type codes as reported by the brokerage sync.
const (
	AccountTFSA      = "TFSA"
	AccountRRSP      = "RRSP"
	AccountFHSA      = "FHSA"
	AccountRESP      = "RESP"
	AccountLIRA      = "LIRA"
	AccountNonReg    = "NON_REG"
	AccountUSD       = "USD" // USD-denominated non-registered
	AccountCorporate = "CORPORATE"
	AccountCCPC      = "CCPC"
	AccountCrypto    = "CRYPTO"
)

// shelteredAccountTypes are registered accounts where dispositions carry no
// immediate tax consequence.
var shelteredAccountTypes = []string{
	AccountTFSA, AccountRRSP, AccountFHSA, AccountRESP, AccountLIRA,
}

// taxableAccountTypes report capital gains to CRA.
var taxableAccountTypes = []string{
	AccountNonReg, AccountUSD, AccountCorporate, AccountCCPC, AccountCrypto,
}

// corporateAccountTypes are CCPC-held accounts subject to the passive income
// regime (RDTOH, CDA, AAII/SBD clawback).
var corporateAccountTypes = []string{AccountCorporate, AccountCCPC}

// IsShelteredAccount reports whether the account type is registered/sheltered
func IsShelteredAccount(accountType string) bool {
	return containsType(shelteredAccountTypes, accountType)
}

// IsTaxableAccount reports whether dispositions in the account type are taxable
func IsTaxableAccount(accountType string) bool {
	return containsType(taxableAccountTypes, accountType)
}

// IsCorporateAccount reports whether the account type is CCPC-held
func IsCorporateAccount(accountType string) bool {
	return containsType(corporateAccountTypes, accountType)
}

func containsType(set []string, t string) bool {
	for _, s := range set {
		if s == t {
			return true
		}
	}
	return false
}

// Account represents a brokerage account
type Account struct {
	ID        string    `json:"id" badgerhold:"key"`
	Type      string    `json:"type"`
	Nickname  string    `json:"nickname,omitempty"`
	Currency  string    `json:"currency"`
	Balance   float64   `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns the nickname when set, otherwise the account type.
func (a *Account) DisplayName() string {
	if a.Nickname != "" {
		return a.Nickname
	}
	return a.Type
}

// Position is a current open holding snapshot for one symbol in one account.
type Position struct {
	ID          string    `json:"id" badgerhold:"key"` // accountID:symbol
	Symbol      string    `json:"symbol" badgerhold:"index"`
	Name        string    `json:"name,omitempty"`
	AccountID   string    `json:"account_id" badgerhold:"index"`
	Quantity    float64   `json:"quantity"`
	BookValue   float64   `json:"book_value"`
	MarketValue float64   `json:"market_value"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PositionKey builds the storage key for a position.
func PositionKey(accountID, symbol string) string {
	return accountID + ":" + symbol
}
