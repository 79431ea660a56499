package utils

import (
	"net/http"

	"github.com/VietCH57/What-to-watch/shared"
)

type UARoundtripper struct {
	RT http.RoundTripper
}

func (uart *UARoundtripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Add("User-Agent", shared.USER_AGENT)
	rt := uart.RT
	if rt == nil {
		rt = http.DefaultTransport
	}
	return rt.RoundTrip(req)
}

func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &UARoundtripper{},
	}
}
