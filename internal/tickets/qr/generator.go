// Package qr renders tickets as QR codes whose content is an AES encrypted payload that
// only holders of the secret can read back.
package qr

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/skip2/go-qrcode"

	"train-station/internal/models"
)

const imageSize = 256

var ErrMalformedToken = errors.New("malformed ticket token")

// Payload is what a conductor's scanner recovers from a ticket.
type Payload struct {
	TicketID      int64     `json:"ticket_id"`
	OrderID       int64     `json:"order_id"`
	JourneyID     int64     `json:"journey_id"`
	Cargo         int       `json:"cargo"`
	Seat          int       `json:"seat"`
	Route         string    `json:"route,omitempty"`
	DepartureTime time.Time `json:"departure_time,omitempty"`
}

func NewPayload(t models.Ticket) Payload {
	p := Payload{
		TicketID:  t.ID,
		OrderID:   t.OrderID,
		JourneyID: t.JourneyID,
		Cargo:     t.Cargo,
		Seat:      t.Seat,
	}
	if t.Journey != nil {
		p.DepartureTime = t.Journey.DepartureTime.UTC()
		if t.Journey.Route != nil {
			p.Route = t.Journey.Route.Label()
		}
	}
	return p
}

type Generator struct {
	secret []byte
}

func NewGenerator(secret string) *Generator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &Generator{secret: hashed[:]}
}

// Token encrypts the ticket payload into a URL safe string.
func (g *Generator) Token(t models.Ticket) (string, error) {
	data, err := json.Marshal(NewPayload(t))
	if err != nil {
		return "", err
	}
	return encryptAES(data, g.secret)
}

// GenerateEncryptedQR returns a PNG image of the ticket token.
func (g *Generator) GenerateEncryptedQR(t models.Ticket) ([]byte, error) {
	token, err := g.Token(t)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt ticket %d: %w", t.ID, err)
	}
	return qrcode.Encode(token, qrcode.Medium, imageSize)
}

// Decrypt recovers the payload from a scanned token.
func (g *Generator) Decrypt(token string) (Payload, error) {
	var p Payload
	data, err := decryptAES(token, g.secret)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return p, nil
}

func encryptAES(data []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}

func decryptAES(token string, key []byte) ([]byte, error) {
	ciphertext, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if len(ciphertext) < aes.BlockSize {
		return nil, ErrMalformedToken
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	iv := ciphertext[:aes.BlockSize]
	data := make([]byte, len(ciphertext)-aes.BlockSize)
	cipher.NewCFBDecrypter(block, iv).XORKeyStream(data, ciphertext[aes.BlockSize:])
	return data, nil
}
