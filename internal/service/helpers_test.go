package service

import "encoding/json"

func copyJSON(src, dest interface{}) error {
	raw, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func strPtr(v string) *string { return &v }
