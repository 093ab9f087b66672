package pwless

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/lgc202/pwless-go/httpx"
)

const listCredentialsEndpoint = "/credentials/list"

// Descriptor identifies a WebAuthn credential.
type Descriptor struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Credential is an authenticator registered for a user, as stored by the service.
// Timestamps are kept in the server's string form.
type Credential struct {
	Descriptor       Descriptor `json:"descriptor"`
	PublicKey        string     `json:"publicKey"`
	UserHandle       string     `json:"userHandle"`
	SignatureCounter int64      `json:"signatureCounter"`
	CreatedAt        string     `json:"createdAt"`
	AaGUID           string     `json:"aaGuid"`
	LastUsedAt       string     `json:"lastUsedAt"`
	RPID             string     `json:"rpid"`
	Origin           string     `json:"origin"`
	Country          string     `json:"country"`
	Device           string     `json:"device"`
	Nickname         string     `json:"nickname"`
	UserID           string     `json:"userId"`

	// Extra holds fields the server sent that have no field above, verbatim.
	// They are written back out by MarshalJSON.
	Extra map[string]json.RawMessage `json:"-"`
}

var credentialFields = map[string]struct{}{
	"descriptor": {}, "publicKey": {}, "userHandle": {}, "signatureCounter": {},
	"createdAt": {}, "aaGuid": {}, "lastUsedAt": {}, "rpid": {}, "origin": {},
	"country": {}, "device": {}, "nickname": {}, "userId": {},
}

type credentialJSON Credential

func (c *Credential) UnmarshalJSON(b []byte) error {
	var known credentialJSON
	if err := json.Unmarshal(b, &known); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for k := range all {
		if _, ok := credentialFields[k]; ok {
			delete(all, k)
		}
	}
	if len(all) == 0 {
		all = nil
	}
	known.Extra = all
	*c = Credential(known)
	return nil
}

func (c Credential) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(credentialJSON(c))
	if err != nil || len(c.Extra) == 0 {
		return b, err
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	for k, v := range c.Extra {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

// ListCredentials returns the credentials registered for userID.
// userID is sent as given; validating it is the server's job.
func (c *Client) ListCredentials(ctx context.Context, userID string) ([]Credential, error) {
	return Send[[]Credential](ctx, c, http.MethodGet, listCredentialsEndpoint,
		httpx.NewPayload().Set("userId", userID))
}
