package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"log"
	"os"

	"github.com/spf13/afero"
	"golang.org/x/crypto/ssh"
)

const hostKeyBits = 3072

// Initialize writes the default configuration and an SSH host key to dir if
// they don't exist yet, then loads the configuration.
func Initialize(dir string, logger *log.Logger) (*Configuration, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	if err := InitializeFs(afero.NewBasePathFs(afero.NewOsFs(), dir), logger); err != nil {
		return nil, err
	}
	return Load(dir)
}

// InitializeFs writes the default configuration and an SSH host key to the
// root of fsys if they don't exist yet.
func InitializeFs(fsys afero.Fs, logger *log.Logger) error {
	if ok, err := afero.Exists(fsys, ConfigurationName); err != nil {
		return err
	} else if ok {
		logger.Printf("- %s exists, skipping\n", ConfigurationName)
	} else {
		logger.Printf("- Writing %s\n", ConfigurationName)
		if err := afero.WriteFile(fsys, ConfigurationName, defaultConfigData, 0600); err != nil {
			return err
		}
	}

	if ok, err := afero.Exists(fsys, PrivateKeyName); err != nil {
		return err
	} else if ok {
		logger.Printf("- %s exists, skipping\n", PrivateKeyName)
		return nil
	}

	logger.Printf("- Generating SSH host key %s\n", PrivateKeyName)
	keyPem, err := generateHostKey()
	if err != nil {
		return err
	}
	return afero.WriteFile(fsys, PrivateKeyName, keyPem, 0600)
}

func generateHostKey() ([]byte, error) {
	key, err := rsa.GenerateKey(rand.Reader, hostKeyBits)
	if err != nil {
		return nil, err
	}

	keyPem := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	// Make sure the server will be able to use it.
	if _, err := ssh.ParsePrivateKey(keyPem); err != nil {
		return nil, err
	}
	return keyPem, nil
}
