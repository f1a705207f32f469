package main

import "github.com/crudusers/users-service/internal/cli"

func main() {
	cli.Execute(cli.NewExportCmd())
}
