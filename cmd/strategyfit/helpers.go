package main

import (
	"encoding/json"
	"fmt"
)

func jsonOutput(in interface{}) {
	j, err := json.MarshalIndent(in, "", " ")
	if err != nil {
		return
	}
	fmt.Println(string(j))
}
