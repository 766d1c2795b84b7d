// Command gmail-auth-helper walks through the OAuth2 authorization flow for
// the Gmail send scope and prints the env entries the mailer needs.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
)

type oauth2Credentials struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	RedirectURIs []string `json:"redirect_uris"`
	AuthURI      string   `json:"auth_uri"`
	TokenURI     string   `json:"token_uri"`
}

// googleCredentialsFile matches the credentials.json layout exported from
// Google Cloud Console.
type googleCredentialsFile struct {
	Installed *oauth2Credentials `json:"installed,omitempty"`
	Web       *oauth2Credentials `json:"web,omitempty"`
}

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: gmail-auth-helper <credentials.json>")
	}

	credentialsData, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to read credentials file: %v", err)
	}
	credentials, err := parseGoogleCredentials(credentialsData)
	if err != nil {
		log.Fatalf("Failed to parse credentials: %v", err)
	}

	config := &oauth2.Config{
		ClientID:     credentials.ClientID,
		ClientSecret: credentials.ClientSecret,
		RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
		Scopes:       []string{gmail.GmailSendScope},
		Endpoint:     google.Endpoint,
	}

	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)

	fmt.Println("Gmail OAuth2 Authorization Helper")
	fmt.Println("=================================")
	fmt.Printf("1. Open this URL in your browser:\n   %s\n\n", authURL)
	fmt.Println("2. Authorize the application")
	fmt.Println("3. Copy the authorization code and enter it below")
	fmt.Print("\nEnter the authorization code: ")

	var authCode string
	if _, err := fmt.Scan(&authCode); err != nil {
		log.Fatalf("Failed to read authorization code: %v", err)
	}

	token, err := config.Exchange(context.Background(), authCode)
	if err != nil {
		log.Fatalf("Failed to exchange code for token: %v", err)
	}

	fmt.Println("\nSuccessfully obtained tokens. Add these to your .env file:")
	fmt.Printf("\nGMAIL_CREDENTIALS_JSON='%s'\n", string(credentialsData))
	if token.RefreshToken != "" {
		fmt.Printf("GMAIL_REFRESH_TOKEN='%s'\n", token.RefreshToken)
	} else {
		fmt.Println("\nNo refresh token returned; revoke prior access and run again.")
	}
}

func parseGoogleCredentials(data []byte) (*oauth2Credentials, error) {
	var file googleCredentialsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid credentials json: %w", err)
	}
	if file.Installed != nil {
		return file.Installed, nil
	}
	if file.Web != nil {
		return file.Web, nil
	}
	// Allow a bare credentials object as well.
	var bare oauth2Credentials
	if err := json.Unmarshal(data, &bare); err == nil && bare.ClientID != "" {
		return &bare, nil
	}
	return nil, fmt.Errorf("credentials json contains no installed/web client")
}
