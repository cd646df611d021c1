package main

import (
	appfx "MyFinance/internal/fx"

	"go.uber.org/fx"
)

// @title           MyFinance API
// @version         1.0
// @description     Personal finance ledger: accounts, budgets, pots and transactions.
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	fx.New(
		appfx.AppModule,
	).Run()
}
