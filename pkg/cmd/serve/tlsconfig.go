package serve

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/fevtel/evdash-service-go/log"
	"github.com/fevtel/evdash-service-go/pkg/config"
	"github.com/fevtel/evdash-service-go/pkg/utils/certs/traefik"
)

type certProvider struct {
	ctx  context.Context
	l    *log.Logger
	mu   sync.RWMutex
	cert *tls.Certificate
}

// newTLSConfigProvider builds a tls.Config whose certificate is resolved
// per handshake and reloaded when the underlying files change. Returns
// nil when no certificate source is configured.
func newTLSConfigProvider(ctx context.Context) *tls.Config {
	c := &certProvider{
		ctx: ctx,
		l:   log.GetFromContext(ctx).Named("serve.certs"),
	}
	c.loadCert()
	if c.cert == nil {
		return nil
	}
	cfg := &tls.Config{
		GetCertificate: func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
			c.mu.RLock()
			defer c.mu.RUnlock()
			return c.cert, nil
		},
		MinVersion: tls.VersionTLS13,
	}
	if config.TLSCAFile != "" {
		c.l.Info("Loading ca cert", log.String("file", config.TLSCAFile))
		caCert, err := os.ReadFile(config.TLSCAFile)
		if err != nil {
			c.l.Error("could not read TLS root CA", log.ErrorField(err))
		}
		caCertPool := x509.NewCertPool()
		if ok := caCertPool.AppendCertsFromPEM(caCert); !ok {
			c.l.Error("could not append cert to pool")
		}
		cfg.ClientCAs = caCertPool
		cfg.ClientAuth = tls.VerifyClientCertIfGiven
	}
	go c.watchAndReloadCerts()
	return cfg
}

//nolint:gocognit,cyclop // by design
func (c *certProvider) watchAndReloadCerts() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		c.l.Error("could not create fsnotify watcher", log.ErrorField(err))
		return
	}
	defer watcher.Close()
	for _, f := range []string{
		config.TLSCertFile, config.TLSKeyFile, config.TraefikCerts,
	} {
		if f == "" {
			continue
		}
		if err := watcher.Add(f); err != nil {
			c.l.Error("could not watch cert file",
				log.String("file", f), log.ErrorField(err))
		}
	}
	for {
		select {
		case <-c.ctx.Done():
			c.l.Info("context done, stopping cert reload")
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Chmod) {
				c.l.Info("cert file changed, reloading cert",
					log.String("file", event.Name))
				c.loadCert()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			c.l.Error("watcher error", log.ErrorField(err))
		}
	}
}

func (c *certProvider) loadCert() {
	if config.TraefikCerts != "" && config.TraefikCertDomain != "" {
		c.l.Info("Looking up traefik certs",
			log.String("file", config.TraefikCerts),
			log.String("domain", config.TraefikCertDomain))
		cert, err := traefik.CertFromStore(
			config.TraefikCerts,
			config.TraefikCertDomain)
		if err != nil {
			c.l.Error("could not load traefik certs", log.ErrorField(err))
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		c.cert = &cert
		return
	}
	if config.TLSCertFile != "" && config.TLSKeyFile != "" {
		c.l.Info("Loading cert",
			log.String("key", config.TLSKeyFile),
			log.String("cert", config.TLSCertFile))
		cert, err := tls.LoadX509KeyPair(config.TLSCertFile, config.TLSKeyFile)
		if err != nil {
			c.l.Error("could not load TLS key pair", log.ErrorField(err))
			return
		}
		c.mu.Lock()
		defer c.mu.Unlock()
		c.cert = &cert
	}
}
