// Package traefik extracts TLS certificates from a traefik acme storage
// file. The store keeps one entry per resolved domain with certificate
// and key base64 encoded.
package traefik

import (
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

type certEntry struct {
	Certificate string `json:"certificate"`
	Key         string `json:"key"`
}

// CertFromStore loads the certificate for domain from the acme storage file.
func CertFromStore(file, domain string) (tls.Certificate, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("reading acme storage: %w", err)
	}
	return ParseCert(string(data), domain)
}

// ParseCert extracts the certificate for domain from raw acme JSON.
func ParseCert(jsonData, domain string) (tls.Certificate, error) {
	certData, keyData, err := certDataForDomain(jsonData, domain)
	if err != nil {
		return tls.Certificate{}, err
	}
	decodedCert, err := base64.StdEncoding.DecodeString(certData)
	if err != nil {
		return tls.Certificate{}, err
	}
	decodedKey, err := base64.StdEncoding.DecodeString(keyData)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.X509KeyPair(decodedCert, decodedKey)
}

func certDataForDomain(jsonData, domain string) (cert, key string, err error) {
	obj, err := oj.ParseString(jsonData)
	if err != nil {
		return "", "", err
	}

	// entries live below the resolver name, hence the recursive descent
	jPath := fmt.Sprintf(`$..Certificates[?(@.domain.main == %q)]`, domain)
	path, err := jp.ParseString(jPath)
	if err != nil {
		return "", "", err
	}
	res := path.Get(obj)
	if len(res) == 0 {
		return "", "", fmt.Errorf("no certificate for domain %s", domain)
	}

	entry := certEntry{}
	if err := oj.Unmarshal([]byte(oj.JSON(res[0])), &entry); err != nil {
		return "", "", err
	}
	return entry.Certificate, entry.Key, nil
}
