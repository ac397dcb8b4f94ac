package services

import (
	"fmt"

	"storefront/internal/models"

	"github.com/skip2/go-qrcode"
)

// PickupQRCode génère le PNG présenté au retrait en magasin
func PickupQRCode(order models.Order) ([]byte, error) {
	content := fmt.Sprintf("storefront:pickup:%s:%s", order.ID, order.UserID)
	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("QR code commande %s: %w", order.ID, err)
	}
	return png, nil
}
