package main

import (
	"fmt"
	"net/http"
	"time"
)

// Polls the contacts endpoint until the service answers with OK. Useful as
// a readiness gate in scripts that run setup, seed and serve in sequence.
func main() {
	totalWaitTime := 0
	for {
		res, err := http.Get("http://localhost:8080/contatos")
		if err == nil {
			if res.StatusCode == http.StatusOK {
				fmt.Println(res)
				break
			} else {
				fmt.Println(res)
			}
		} else {
			fmt.Println(err)
		}
		totalWaitTime += 5
		fmt.Printf("Waiting %d seconds", totalWaitTime)
		fmt.Println()
		time.Sleep(5 * time.Second)
	}
}
