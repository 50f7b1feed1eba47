package flickr

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dghubble/oauth1"

	"github.com/vijay-prabhu/tripvault/internal/logging"
)

// Endpoint holds the Flickr OAuth 1.0a URLs
var Endpoint = oauth1.Endpoint{
	RequestTokenURL: "https://www.flickr.com/services/oauth/request_token",
	AuthorizeURL:    "https://www.flickr.com/services/oauth/authorize",
	AccessTokenURL:  "https://www.flickr.com/services/oauth/access_token",
}

// ErrNoAPIKey is returned when the consumer key or secret is missing
var ErrNoAPIKey = errors.New("flickr API key and secret are required")

type storedToken struct {
	Token       string `json:"token"`
	TokenSecret string `json:"token_secret"`
}

// NewConfig builds the OAuth1 consumer config for the out-of-band flow
func NewConfig(apiKey, apiSecret string) (*oauth1.Config, error) {
	if apiKey == "" || apiSecret == "" {
		return nil, ErrNoAPIKey
	}
	return &oauth1.Config{
		ConsumerKey:    apiKey,
		ConsumerSecret: apiSecret,
		CallbackURL:    "oob",
		Endpoint:       Endpoint,
	}, nil
}

// Authorize returns a signing HTTP client, running the interactive
// read-permission flow when no token is saved at tokenPath.
func Authorize(ctx context.Context, config *oauth1.Config, tokenPath string, in io.Reader, out io.Writer) (*http.Client, error) {
	token, err := loadToken(tokenPath)
	if err != nil {
		logging.Log.Info("No saved Flickr token, starting authorization")
		token, err = tokenFromTerminal(config, in, out)
		if err != nil {
			return nil, fmt.Errorf("flickr authorization failed: %w", err)
		}
		if err := saveToken(tokenPath, token); err != nil {
			logging.Log.Warnf("Failed to save Flickr token: %v", err)
		}
	}
	return config.Client(ctx, token), nil
}

func tokenFromTerminal(config *oauth1.Config, in io.Reader, out io.Writer) (*oauth1.Token, error) {
	requestToken, requestSecret, err := config.RequestToken()
	if err != nil {
		return nil, fmt.Errorf("failed to get request token: %w", err)
	}

	authURL, err := config.AuthorizationURL(requestToken)
	if err != nil {
		return nil, fmt.Errorf("failed to build authorization URL: %w", err)
	}
	q := authURL.Query()
	q.Set("perms", "read")
	authURL.RawQuery = q.Encode()

	fmt.Fprintf(out, "Go to this URL and authorize the app:\n%s\n\nEnter the verification code: ", authURL.String())
	verifier, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read verification code: %w", err)
	}
	verifier = strings.TrimSpace(verifier)
	if verifier == "" {
		return nil, errors.New("no verification code entered")
	}

	accessToken, accessSecret, err := config.AccessToken(requestToken, requestSecret, verifier)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}
	return oauth1.NewToken(accessToken, accessSecret), nil
}

func loadToken(tokenPath string) (*oauth1.Token, error) {
	data, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, err
	}

	var st storedToken
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	if st.Token == "" || st.TokenSecret == "" {
		return nil, errors.New("incomplete token file")
	}
	return oauth1.NewToken(st.Token, st.TokenSecret), nil
}

func saveToken(tokenPath string, token *oauth1.Token) error {
	if err := os.MkdirAll(filepath.Dir(tokenPath), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(storedToken{Token: token.Token, TokenSecret: token.TokenSecret}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(tokenPath, data, 0600)
}
