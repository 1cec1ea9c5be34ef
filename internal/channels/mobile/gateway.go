package mobile

import (
	"context"
	"errors"
	"fmt"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Gateway creates one outbound message and returns the provider's id.
type Gateway interface {
	CreateMessage(ctx context.Context, from, to, body string) (string, error)
}

// TwilioGateway sends SMS and WhatsApp messages through the Twilio REST API.
type TwilioGateway struct {
	client *twilio.RestClient
}

func NewTwilioGateway(accountSID, authToken string) *TwilioGateway {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioGateway{client: client}
}

type createResult struct {
	sid string
	err error
}

// CreateMessage is bounded by ctx. The SDK call has no context parameter, so
// it runs in its own goroutine and is abandoned when ctx ends first.
func (g *TwilioGateway) CreateMessage(ctx context.Context, from, to, body string) (string, error) {
	params := &openapi.CreateMessageParams{}
	params.SetFrom(from)
	params.SetTo(to)
	params.SetBody(body)

	done := make(chan createResult, 1)
	go func() {
		resp, err := g.client.Api.CreateMessage(params)
		if err != nil {
			done <- createResult{err: fmt.Errorf("twilio: %w", err)}
			return
		}
		if resp == nil || resp.Sid == nil {
			done <- createResult{err: errors.New("twilio: response without message sid")}
			return
		}
		done <- createResult{sid: *resp.Sid}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.sid, r.err
	}
}
