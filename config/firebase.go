// config/firebase.go
package config

import (
	"context"
	"strings"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// InitFirebase builds the Firebase app shared by Firestore and FCM.
// FIREBASE_CREDENTIALS may hold either a service account file path or the
// JSON document itself.
func InitFirebase(ctx context.Context, cfg *Config) (*firebase.App, error) {
	var fbConfig *firebase.Config
	if cfg.FirebaseProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}

	creds := strings.TrimSpace(cfg.FirebaseCredentials)
	switch {
	case creds == "":
		// Default credentials (for cloud environments)
		return firebase.NewApp(ctx, fbConfig)
	case strings.HasPrefix(creds, "{"):
		return firebase.NewApp(ctx, fbConfig, option.WithCredentialsJSON([]byte(creds)))
	default:
		return firebase.NewApp(ctx, fbConfig, option.WithCredentialsFile(creds))
	}
}

// FirebaseEnabled reports whether Firebase should be initialised at all.
func (c *Config) FirebaseEnabled() bool {
	return c.FirebaseCredentials != "" || c.CaseStore == StoreFirestore
}
