package easyHttp

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// tlsOptions is the TLS material a handle hands to the engine as file
// names. Nothing is read until a transfer starts.
type tlsOptions struct {
	verifyPeer  bool
	cert        string
	certType    string
	key         string
	keyType     string
	keyPassword string
	caInfo      string
	caPath      string
}

func (e *fastEngine) tlsConfig() (*tls.Config, error) {
	cfg := &tls.Config{}
	if base := e.cfg.FastHTTPConfig.TLSConfig; base != nil {
		cfg = base.Clone()
	}
	if !e.tls.verifyPeer {
		cfg.InsecureSkipVerify = true
	}
	if e.tls.caInfo != "" || e.tls.caPath != "" {
		pool, err := loadCertPool(e.tls.caInfo, e.tls.caPath)
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
	}
	if e.tls.cert != "" {
		cert, err := loadClientCertificate(e.tls)
		if err != nil {
			return nil, err
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}

// loadCertPool reads the PEM bundle in caInfo and every PEM file in the
// caPath directory.
func loadCertPool(caInfo, caPath string) (*x509.CertPool, error) {
	pool := x509.NewCertPool()
	if caInfo != "" {
		data, err := os.ReadFile(caInfo)
		if err != nil {
			return nil, errors.Wrap(err, "read ca bundle")
		}
		if !pool.AppendCertsFromPEM(data) {
			return nil, errors.Errorf("no certificates found in %s", caInfo)
		}
	}
	if caPath != "" {
		entries, err := os.ReadDir(caPath)
		if err != nil {
			return nil, errors.Wrap(err, "read ca directory")
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			data, err := os.ReadFile(filepath.Join(caPath, entry.Name()))
			if err != nil {
				return nil, errors.Wrap(err, "read ca file")
			}
			// Files without certificates are skipped like a hashed
			// directory's other contents.
			pool.AppendCertsFromPEM(data)
		}
	}
	return pool, nil
}

// loadClientCertificate builds the client certificate from opts. The key
// is read from the certificate file when no key file is set.
func loadClientCertificate(opts tlsOptions) (tls.Certificate, error) {
	var cert tls.Certificate
	certData, err := os.ReadFile(opts.cert)
	if err != nil {
		return cert, errors.Wrap(err, "read ssl cert")
	}
	if opts.certType == "DER" {
		cert.Certificate = [][]byte{certData}
	} else {
		cert.Certificate = pemBlocks(certData, "CERTIFICATE")
	}
	if len(cert.Certificate) == 0 {
		return cert, errors.Errorf("no certificate found in %s", opts.cert)
	}

	if opts.keyType == "ENG" {
		return cert, ErrEngineKeyUnsupported
	}
	keyData := certData
	if opts.key != "" {
		keyData, err = os.ReadFile(opts.key)
		if err != nil {
			return cert, errors.Wrap(err, "read ssl key")
		}
	}
	var keyDER []byte
	if opts.keyType == "DER" {
		keyDER = keyData
	} else {
		keyDER, err = pemPrivateKey(keyData, opts.keyPassword)
		if err != nil {
			return cert, err
		}
	}
	cert.PrivateKey, err = parsePrivateKey(keyDER)
	if err != nil {
		return cert, err
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return cert, errors.Wrap(err, "parse ssl cert")
	}
	cert.Leaf = leaf
	return cert, nil
}

func pemBlocks(data []byte, blockType string) [][]byte {
	var blocks [][]byte
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return blocks
		}
		if block.Type == blockType {
			blocks = append(blocks, block.Bytes)
		}
	}
}

// pemPrivateKey returns the DER bytes of the first private key block,
// decrypting legacy encrypted PEM with password.
func pemPrivateKey(data []byte, password string) ([]byte, error) {
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return nil, errors.New("no private key found")
		}
		if block.Type != "PRIVATE KEY" && block.Type != "RSA PRIVATE KEY" && block.Type != "EC PRIVATE KEY" {
			continue
		}
		//nolint:staticcheck
		if x509.IsEncryptedPEMBlock(block) {
			der, err := x509.DecryptPEMBlock(block, []byte(password))
			if err != nil {
				return nil, errors.Wrap(err, "decrypt ssl key")
			}
			return der, nil
		}
		return block.Bytes, nil
	}
}

func parsePrivateKey(der []byte) (crypto.PrivateKey, error) {
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		switch key := key.(type) {
		case *rsa.PrivateKey, *ecdsa.PrivateKey, ed25519.PrivateKey:
			return key, nil
		default:
			return nil, errors.Errorf("unsupported private key type %T", key)
		}
	}
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}
	return nil, errors.New("can not parse ssl key")
}
