package provider

import (
	"strings"

	"github.com/redink-ai/redink/internal/models"
)

const volcanoDefaultBaseURL = "https://ark.cn-beijing.volces.com/api/v3"

// newVolcanoClient builds a client for the Volcano Engine Ark API. Ark speaks
// the OpenAI-compatible wire format; authentication accepts either a plain
// API key or the id_key_secret triple, in which case the app key is sent as
// the bearer token.
func newVolcanoClient(cred Credential) (Client, error) {
	base := cred.BaseURL
	if base == "" {
		base = volcanoDefaultBaseURL
	}

	token := cred.APIKey
	if token == "" {
		token = cred.AppKey
	}
	headers := map[string]string{"Authorization": "Bearer " + token}
	if cred.AppID != "" {
		headers["X-App-Id"] = cred.AppID
	}
	if cred.Region != "" {
		headers["X-Region"] = cred.Region
	}

	return &chatmlClient{
		providerType: models.ProviderVolcano,
		cred:         cred,
		url:          strings.TrimRight(base, "/") + "/chat/completions",
		headers:      headers,
		httpClient:   newHTTPClient(cred.Timeout),
	}, nil
}
