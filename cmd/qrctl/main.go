package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	Token     string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	var (
		baseURL = envOr("QRCALL_URL", "http://localhost:8080")
		token   = envOr("QRCALL_TOKEN", "")
		out     = envOr("QRCALL_OUT", "text")
		timeout = 30 * time.Second
	)

	root := &cobra.Command{
		Use:   "qrctl",
		Short: "CLI for the qrcall service",
	}

	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "service base URL (env QRCALL_URL)")
	root.PersistentFlags().StringVar(&token, "token", token, "bearer token (env QRCALL_TOKEN)")
	root.PersistentFlags().StringVar(&out, "out", out, "output format: json|text")

	cl := &client{HTTP: &http.Client{Timeout: timeout}}
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cl.BaseURL = baseURL
		cl.Token = token
		cl.OutFormat = out
	}

	// ping: no auth needed
	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Check service readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/readyz", nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("not ready: status=%d body=%s", status, string(body))
			}
			if cl.OutFormat == "text" {
				fmt.Println("ok")
				return nil
			}
			cl.print(status, body)
			return nil
		},
	}

	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative operations (requires an admin token)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				return fmt.Errorf("missing bearer token (flag --token or env QRCALL_TOKEN)")
			}
			return nil
		},
	}

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Issue an unbound QR code for pre-printing",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("POST", "/qr/admin/generate", nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("generate failed: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}

	var count int
	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "Issue several unbound QR codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			for i := 0; i < count; i++ {
				status, body, err := cl.do("POST", "/qr/admin/generate", nil)
				if err != nil {
					return err
				}
				if status/100 != 2 {
					return fmt.Errorf("generate %d failed: status=%d body=%s", i+1, status, string(body))
				}
				cl.print(status, body)
			}
			return nil
		},
	}
	batchCmd.Flags().IntVar(&count, "count", 1, "number of codes to issue")

	analyticsCmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show service-wide scan totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := cl.do("GET", "/qr/admin/analytics", nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("analytics failed: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}

	adminCmd.AddCommand(generateCmd, batchCmd, analyticsCmd)
	root.AddCommand(pingCmd, adminCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
