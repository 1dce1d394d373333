package main

import (
	"github.com/talx-hub/gopher-users/internal/service"
)

func main() {
	service.RunServer()
}
