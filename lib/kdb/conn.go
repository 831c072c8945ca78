package kdb

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/fragforce/campusevents/lib/df"
	"github.com/segmentio/kafka-go"
	"github.com/spf13/viper"
)

func init() {
	viper.SetDefault("kafka.enabled", false)
	viper.SetDefault("kafka.urls", []string{})
	viper.SetDefault("kafka.conn.timeout", 10*time.Second)
	viper.SetDefault("kafka.conn.idle", 300*time.Second)
	viper.SetDefault("kafka.client_id", "campusevents")
	viper.SetDefault("kafka.tls.enabled", false)
	viper.SetDefault("kafka.tls.trusted_cert", "")
	viper.SetDefault("kafka.tls.client_cert", "")
	viper.SetDefault("kafka.tls.client_cert_key", "")
}

func newTLSConfig() (*tls.Config, error) {
	log := df.Log

	roots := x509.NewCertPool()

	ok := roots.AppendCertsFromPEM([]byte(viper.GetString("kafka.tls.trusted_cert")))
	if !ok {
		err := errors.New("invalid kafka trusted cert")
		log.WithError(err).Error("Invalid kafka trusted cert")
		return nil, err
	}

	t := tls.Config{
		RootCAs:       roots,
		MinVersion:    tls.VersionTLS12,
		Renegotiation: tls.RenegotiateNever,
	}

	// Client certs are optional - plenty of brokers only want server side TLS
	if viper.GetString("kafka.tls.client_cert") != "" {
		cert, err := tls.X509KeyPair(
			[]byte(viper.GetString("kafka.tls.client_cert")),
			[]byte(viper.GetString("kafka.tls.client_cert_key")),
		)
		if err != nil {
			log.WithError(err).Error("Problem loading kafka client key pair")
			return nil, err
		}
		t.Certificates = []tls.Certificate{cert}
	}

	log.Trace("Created tls config")
	return &t, nil
}

func newKafkaTransport(ctx context.Context) (t *kafka.Transport, err error) {
	log := df.Log.WithContext(ctx)

	t = &kafka.Transport{
		DialTimeout: viper.GetDuration("kafka.conn.timeout"),
		IdleTimeout: viper.GetDuration("kafka.conn.idle"),
		ClientID:    clientID(),
		Context:     ctx,
	}

	if viper.GetBool("kafka.tls.enabled") {
		tlsConfig, err := newTLSConfig()
		if err != nil {
			log.WithError(err).Error("Problem creating new tls config")
			return nil, err
		}
		t.TLS = tlsConfig
	}

	log.Trace("Created new kafka transport")
	return
}

func clientID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return viper.GetString("kafka.client_id")
	}
	return fmt.Sprintf("%v-%v", viper.GetString("kafka.client_id"), host)
}

//brokerAddrs turns `kafka.urls` (kafka+ssl://host:9096 style, or bare host:port) into host:port
func brokerAddrs(kURLs []string) ([]string, error) {
	addrs := make([]string, 0, len(kURLs))
	for _, kURL := range kURLs {
		u, err := url.ParseRequestURI(kURL)
		if err != nil || u.Host == "" {
			// Not a URL - take it as host:port
			if kURL == "" {
				continue
			}
			addrs = append(addrs, kURL)
			continue
		}
		addrs = append(addrs, u.Host)
	}
	if len(addrs) == 0 {
		return nil, ErrNoBrokers
	}
	return addrs, nil
}

func NewKafkaWriter(ctx context.Context, topic string) (writer *kafka.Writer, err error) {
	log := df.Log.WithField("kafka.topic", topic).WithContext(ctx)

	transport, err := newKafkaTransport(ctx)
	if err != nil {
		log.WithError(err).Error("Problem creating kafka transport")
		return nil, err
	}

	addrs, err := brokerAddrs(viper.GetStringSlice("kafka.urls"))
	if err != nil {
		log.WithError(err).WithField("url.raw", viper.GetStringSlice("kafka.urls")).Error("Problem with kafka urls")
		return nil, err
	}

	writer = &kafka.Writer{
		Addr:                   kafka.TCP(addrs...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		Transport:              transport,
		AllowAutoTopicCreation: false,
	}

	log.Trace("Created kafka writer obj")

	return
}
