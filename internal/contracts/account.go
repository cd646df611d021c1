package contracts

import "MyFinance/internal/domain/account"

type AccountResponse struct {
	Account          *account.Account `json:"account"`
	FormattedBalance string           `json:"formattedBalance"`
}
