package scraper

import (
	"context"
	"crypto/x509"
	"fmt"
	"net"

	tls2 "github.com/refraction-networking/utls"
)

// chromeDialer opens TLS connections that present a Chrome ClientHello.
// ALPN is pinned to http/1.1 because net/http's custom TLS dial path
// cannot speak HTTP/2 on a utls connection.
type chromeDialer struct {
	dialer  net.Dialer
	rootCAs *x509.CertPool
}

// DialTLSContext is suitable for http.Transport.DialTLSContext
func (d *chromeDialer) DialTLSContext(ctx context.Context, network, addr string) (net.Conn, error) {
	spec, err := tls2.UTLSIdToSpec(tls2.HelloChrome_Auto)
	if err != nil {
		return nil, fmt.Errorf("chrome hello spec: %w", err)
	}
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls2.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
		}
	}

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}

	rawConn, err := d.dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	tlsConn := tls2.UClient(rawConn, &tls2.Config{
		ServerName: host,
		RootCAs:    d.rootCAs,
	}, tls2.HelloCustom)
	if err := tlsConn.ApplyPreset(&spec); err != nil {
		rawConn.Close()
		return nil, fmt.Errorf("applying chrome hello: %w", err)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}
