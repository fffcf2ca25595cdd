package main

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"
)

func collectForCLI[T any](seq iter.Seq2[int, *T], marshal func(*T) ([]byte, error)) ([][]byte, error) {
	var results [][]byte
	for _, value := range seq {
		data, err := marshal(value)
		if err != nil {
			return nil, err
		}
		results = append(results, data)
	}
	return results, nil
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printJSONArray(w io.Writer, entries [][]byte) error {
	if _, err := fmt.Fprintln(w, "["); err != nil {
		return err
	}
	for i, entry := range entries {
		if i > 0 {
			if _, err := fmt.Fprintln(w, ","); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, string(entry)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "]")
	return err
}
