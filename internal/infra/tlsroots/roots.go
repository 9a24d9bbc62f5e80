package tlsroots

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrNoCertsFound means the PEM input decoded cleanly but held no
	// CERTIFICATE blocks.
	ErrNoCertsFound = errors.New("tlsroots: no certificates found in PEM file")

	// ErrInvalidPEM means the input could not be decoded as PEM at all.
	ErrInvalidPEM = errors.New("tlsroots: invalid PEM data")
)

// Pool is a set of trusted root certificates plus constructors for the
// tls.Config values the server and CLI need.
type Pool struct {
	roots *x509.CertPool
}

// NewPool starts from the system trust store. Platforms without an
// accessible system store get an empty pool instead of an error.
func NewPool() (*Pool, error) {
	roots, err := x509.SystemCertPool()
	if err != nil {
		roots = x509.NewCertPool()
	}
	return &Pool{roots: roots}, nil
}

// NewEmptyPool starts with no trusted roots. Used when a deployment pins
// its own CA and must not trust anything else.
func NewEmptyPool() *Pool {
	return &Pool{roots: x509.NewCertPool()}
}

// AddCertFile loads every certificate from a PEM file at path.
func (p *Pool) AddCertFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tlsroots: read cert file %s: %w", path, err)
	}
	return p.AddCertPEM(data)
}

// AddCertPEM adds every CERTIFICATE block in pemData to the pool. Other
// block types (keys, CRLs) are skipped. ErrNoCertsFound is returned when
// no certificate block was present.
func (p *Pool) AddCertPEM(pemData []byte) error {
	added := 0
	rest := pemData
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return fmt.Errorf("tlsroots: parse certificate: %w", err)
		}
		p.roots.AddCert(cert)
		added++
	}

	if added == 0 {
		return ErrNoCertsFound
	}
	return nil
}

// AddCert adds an already-parsed certificate.
func (p *Pool) AddCert(cert *x509.Certificate) {
	p.roots.AddCert(cert)
}

// AddCertDir loads every .pem, .crt, and .cer file under dir. Files that
// fail to parse are skipped so one bad bundle does not block the rest.
func (p *Pool) AddCertDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("tlsroots: read dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".pem", ".crt", ".cer":
			if err := p.AddCertFile(filepath.Join(dir, entry.Name())); err != nil {
				continue
			}
		}
	}
	return nil
}

// Pool exposes the underlying x509.CertPool.
func (p *Pool) Pool() *x509.CertPool {
	return p.roots
}

// TLSConfig returns a client-side config trusting this pool as roots.
func (p *Pool) TLSConfig() *tls.Config {
	return &tls.Config{
		RootCAs:    p.roots,
		MinVersion: tls.VersionTLS12,
	}
}

// MutualTLSConfig returns a server config that presents the given key
// pair and requires client certificates signed by this pool.
func (p *Pool) MutualTLSConfig(certFile, keyFile string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("tlsroots: load key pair: %w", err)
	}

	return &tls.Config{
		RootCAs:      p.roots,
		ClientCAs:    p.roots,
		Certificates: []tls.Certificate{cert},
		ClientAuth:   tls.RequireAndVerifyClientCert,
		MinVersion:   tls.VersionTLS12,
	}, nil
}
