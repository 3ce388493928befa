package game

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jeefxM/STB-World/client/internal/netcfg"
	"github.com/jeefxM/STB-World/shared/protocol"
)

// getAuthToken retrieves the current wallet-session token for authorization
func getAuthToken() string {
	return LoadToken()
}

// getBaseURL returns the API base URL
func getBaseURL() string {
	return netcfg.APIBase
}

// GetJSON performs a GET request and decodes the JSON response
func GetJSON[T any](path string) (T, error) {
	var result T

	u := getBaseURL() + path
	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return result, err
	}

	if token := getAuthToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return result, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	err = json.NewDecoder(resp.Body).Decode(&result)
	return result, err
}

// PostJSON performs a POST request with JSON body and decodes the JSON response
func PostJSON[Req any, Res any](body Req, path string) (Res, error) {
	var result Res

	jsonData, err := json.Marshal(body)
	if err != nil {
		return result, err
	}

	u := getBaseURL() + path
	req, err := http.NewRequest("POST", u, bytes.NewReader(jsonData))
	if err != nil {
		return result, err
	}

	req.Header.Set("Content-Type", "application/json")
	if token := getAuthToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return result, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return result, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
	}

	err = json.Unmarshal(bodyBytes, &result)
	return result, err
}

func fetchGameInfo(gameID string) (protocol.GameInfo, error) {
	return GetJSON[protocol.GameInfo]("/api/game?gameId=" + url.QueryEscape(gameID))
}

func fetchSubmissions(wallet string, limit int) ([]protocol.SubmissionView, error) {
	q := url.Values{}
	q.Set("playerWallet", wallet)
	q.Set("limit", strconv.Itoa(limit))
	return GetJSON[[]protocol.SubmissionView]("/api/submissions?" + q.Encode())
}

// apiClient is the submissionWriter the transaction flow persists through.
type apiClient struct{}

func (apiClient) CreateSubmission(req protocol.CreateSubmissionReq) (protocol.Submission, error) {
	resp, err := PostJSON[protocol.CreateSubmissionReq, protocol.CreateSubmissionResp](req, "/api/submissions")
	if err != nil {
		return protocol.Submission{}, err
	}
	return resp.Submission, nil
}
