package main

import (
	"encoding/json"

	db "minerperf/debug"
)

func mustJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		db.DFatalf("Marshal %T: %v", v, err)
	}
	return string(b)
}
