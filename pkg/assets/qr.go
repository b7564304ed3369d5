package assets

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/nikogura/portfolio/pkg/portfolio"
	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"
)

// QRSize is the side length of the generated contact code in pixels.
const QRSize = 256

//nolint:gochecknoglobals // vCard text escaping
var vcardEscaper = strings.NewReplacer(`\`, `\\`, ",", `\,`, ";", `\;`, "\n", `\n`)

// VCard encodes the profile owner and contact details as a vCard 3.0 card.
func VCard(profile portfolio.Profile, contact portfolio.Contact) (card string) {
	lines := []string{"BEGIN:VCARD", "VERSION:3.0", "FN:" + vcardEscaper.Replace(profile.Name)}

	if profile.Title != "" {
		lines = append(lines, "TITLE:"+vcardEscaper.Replace(profile.Title))
	}
	if contact.Email != "" {
		lines = append(lines, "EMAIL:"+vcardEscaper.Replace(contact.Email))
	}
	if contact.Phone != "" {
		lines = append(lines, "TEL:"+vcardEscaper.Replace(contact.Phone))
	}
	if contact.Location != "" {
		lines = append(lines, "ADR:;;"+vcardEscaper.Replace(contact.Location)+";;;;")
	}

	lines = append(lines, "END:VCARD")
	card = strings.Join(lines, "\r\n")
	return card
}

// WriteContactQR writes a PNG QR code of the contact vCard to path.
func WriteContactQR(doc portfolio.Document, path string) (err error) {
	err = os.MkdirAll(filepath.Dir(path), 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create directory for %s", path)
		return err
	}

	err = qrcode.WriteFile(VCard(doc.Profile, doc.Contact), qrcode.Medium, QRSize, path)
	if err != nil {
		err = errors.Wrapf(err, "failed to write contact QR code: %s", path)
		return err
	}

	return err
}
