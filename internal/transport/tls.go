package transport

import (
	"context"
	"fmt"
	"net"

	utls "github.com/refraction-networking/utls"
)

// chromeHelloSpec returns a Chrome ClientHello with ALPN limited to
// http/1.1, since net/http cannot speak h2 over a utls connection. A fresh
// spec is built per connection; ApplyPreset fills in its extensions.
func chromeHelloSpec() (*utls.ClientHelloSpec, error) {
	spec, err := utls.UTLSIdToSpec(utls.HelloChrome_Auto)
	if err != nil {
		return nil, err
	}
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*utls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	return &spec, nil
}

// dialChromeTLS returns a DialTLSContext func that opens TCP with dialer and
// performs the handshake with a Chrome fingerprint. base may carry RootCAs;
// ServerName is set per connection.
func dialChromeTLS(dialer *net.Dialer, base *utls.Config) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		spec, err := chromeHelloSpec()
		if err != nil {
			return nil, fmt.Errorf("chrome hello spec: %w", err)
		}

		conn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}

		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			host = addr
		}
		cfg := &utls.Config{}
		if base != nil {
			cfg = base.Clone()
		}
		cfg.ServerName = host

		tlsConn := utls.UClient(conn, cfg, utls.HelloCustom)
		if err := tlsConn.ApplyPreset(spec); err != nil {
			conn.Close()
			return nil, fmt.Errorf("apply tls spec: %w", err)
		}
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, err
		}
		return tlsConn, nil
	}
}
