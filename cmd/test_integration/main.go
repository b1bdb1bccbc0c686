// Manual end-to-end check against a running server. Assumes the memory or
// sqlite backend so seeded people are visible to the duplicate scan.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const baseURL = "http://localhost:8080"

func main() {
	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	projectID := fmt.Sprintf("test-project-%d", time.Now().Unix())

	// 1. Ingest narrative text
	fmt.Println("1. Ingesting Text...")
	ingestPayload := map[string]any{
		"text_blocks": []string{
			"My grandmother 刘雪丽 raised me in Chengdu. Everyone called her 雪丽.",
			"雪丽 taught at the village school for thirty years.",
		},
	}
	if !sendRequest("POST", "/projects/"+projectID+"/ingest", ingestPayload, nil) {
		fmt.Println("FAILED: Ingest text")
		os.Exit(1)
	}
	fmt.Println("PASSED: Ingest text")

	// 2. Detect duplicates
	fmt.Println("2. Detecting Duplicates...")
	var detection struct {
		DuplicateGroups []struct {
			Pairs []struct {
				PersonAID string `json:"person_a_id"`
				PersonBID string `json:"person_b_id"`
			} `json:"pairs"`
		} `json:"duplicate_groups"`
	}
	if !sendRequest("GET", "/projects/"+projectID+"/duplicates", nil, &detection) {
		fmt.Println("FAILED: Detect duplicates")
		os.Exit(1)
	}
	if len(detection.DuplicateGroups) == 0 || len(detection.DuplicateGroups[0].Pairs) == 0 {
		fmt.Println("FAILED: expected at least one duplicate group")
		os.Exit(1)
	}
	fmt.Println("PASSED: Detect duplicates")

	pair := detection.DuplicateGroups[0].Pairs[0]

	// 3. Merge the first suggested pair
	fmt.Println("3. Merging...")
	var mergeResp struct {
		MergeLogID string `json:"merge_log_id"`
	}
	mergePayload := map[string]any{
		"project_id":          projectID,
		"primary_person_id":   pair.PersonAID,
		"secondary_person_id": pair.PersonBID,
		"strategy":            "keep_primary",
	}
	if !sendRequest("POST", "/merge", mergePayload, &mergeResp) || mergeResp.MergeLogID == "" {
		fmt.Println("FAILED: Merge")
		os.Exit(1)
	}
	fmt.Println("PASSED: Merge")

	// 4. Undo it again
	fmt.Println("4. Undoing Merge...")
	undoPayload := map[string]any{
		"project_id":   projectID,
		"merge_log_id": mergeResp.MergeLogID,
	}
	if !sendRequest("POST", "/undo", undoPayload, nil) {
		fmt.Println("FAILED: Undo")
		os.Exit(1)
	}
	// A second undo of the same log must be rejected.
	if sendRequest("POST", "/undo", undoPayload, nil) {
		fmt.Println("FAILED: double undo was accepted")
		os.Exit(1)
	}
	fmt.Println("PASSED: Undo")
}

func sendRequest(method, endpoint string, payload any, out any) bool {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}
	fmt.Printf("Response: %s\n", string(respBody))

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			fmt.Printf("Error decoding response: %v\n", err)
			return false
		}
	}
	return true
}
