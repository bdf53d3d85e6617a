package services

import (
	"context"
	"database/sql"
	"log"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var (
	messagingClient *messaging.Client
	once            sync.Once
	initError       error
)

// InitFirebase sets up the FCM client once. The server runs without push
// when credentials are absent, so callers may treat failure as a warning.
func InitFirebase(credentialsPath string) error {
	once.Do(func() {
		ctx := context.Background()

		opt := option.WithCredentialsFile(credentialsPath)
		app, err := firebase.NewApp(ctx, nil, opt)
		if err != nil {
			initError = err
			log.Printf("[FCM] Failed to init Firebase app: %v", err)
			return
		}

		messagingClient, err = app.Messaging(ctx)
		if err != nil {
			initError = err
			log.Printf("[FCM] Failed to get messaging client: %v", err)
			return
		}

		log.Println("[FCM] Firebase Messaging client initialized")
	})

	return initError
}

// MessagingReady reports whether push delivery is available.
func MessagingReady() bool {
	return messagingClient != nil
}

// SendMultipleNotifications fans a notification out to the given device
// tokens. Tokens FCM reports as unregistered are removed from the store.
func SendMultipleNotifications(
	db *sql.DB,
	tokens []string,
	title, body string,
	data map[string]string,
) (int, int, error) {

	if messagingClient == nil {
		return 0, 0, initError
	}

	message := &messaging.MulticastMessage{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data:   data,
		Tokens: tokens,
	}

	response, err := messagingClient.SendEachForMulticast(context.Background(), message)
	if err != nil {
		log.Printf("[FCM] Multicast send failed: %v", err)
		return 0, 0, err
	}

	for i, resp := range response.Responses {
		if resp.Success {
			continue
		}

		log.Printf("[FCM] token send failed: %v", resp.Error)

		if messaging.IsUnregistered(resp.Error) {
			if _, err := db.Exec(`DELETE FROM fcm_tokens WHERE token = $1`, tokens[i]); err != nil {
				log.Printf("[FCM] Failed to delete dead token: %v", err)
			}
		}
	}

	return response.SuccessCount, response.FailureCount, nil
}
