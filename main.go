package main

import (
	"log"

	"NamelessFormsBot/internal/adapters/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("start: %v", err)
	}
	a.Start()
}
