package main

import (
	"DebtGraph/backend/go/client/debt-cli/cmd"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cmd.Execute()
}
