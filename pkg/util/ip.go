package util

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Lookup endpoints used by /debug/ip
var (
	PublicIPURL = "https://api.ipify.org?format=json"
	IPInfoURL   = "http://ip-api.com/json/"
)

// Doer is satisfied by *http.Client
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// IPInfo represents the response from IP-API
type IPInfo struct {
	Status     string `json:"status"`
	Country    string `json:"country"`
	RegionName string `json:"regionName"`
	City       string `json:"city"`
	ISP        string `json:"isp"`
	Query      string `json:"query"`
	Org        string `json:"org"`
}

// GetPublicIP asks ipify for the address this process egresses from
func GetPublicIP(ctx context.Context, client Doer) (string, error) {
	var out struct {
		IP string `json:"ip"`
	}
	if err := getJSON(ctx, client, PublicIPURL, &out); err != nil {
		return "", err
	}
	if out.IP == "" {
		return "", fmt.Errorf("empty IP in lookup response")
	}
	return out.IP, nil
}

// GetIPInfo retrieves location and ISP information for an IP address
func GetIPInfo(ctx context.Context, client Doer, ip string) (*IPInfo, error) {
	if ip == "" {
		return nil, fmt.Errorf("empty IP address")
	}

	var info IPInfo
	if err := getJSON(ctx, client, IPInfoURL+ip, &info); err != nil {
		return nil, err
	}

	if info.Status != "success" {
		return nil, fmt.Errorf("IP lookup failed: %s", info.Status)
	}

	return &info, nil
}

func getJSON(ctx context.Context, client Doer, url string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("lookup %s: HTTP %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
