package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

type client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

type oilResp struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Price       float64 `json:"price"`
	Type        string  `json:"type"`
	DocumentURL string  `json:"oil_document_url"`
	UserID      string  `json:"userId"`
	Email       string  `json:"email"`
}

type pageResp struct {
	Items      []oilResp `json:"items"`
	NextCursor string    `json:"next_cursor"`
	Limit      int       `json:"limit"`
}

type uploadURLResp struct {
	URL       string            `json:"url"`
	Method    string            `json:"method"`
	Key       string            `json:"key"`
	Metadata  map[string]string `json:"metadata"`
	ExpiresIn int               `json:"expires_in"`
	PublicURL string            `json:"public_url"`
}

type apiError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

type ui struct {
	title func(a ...any) string
	ok    func(a ...any) string
	info  func(a ...any) string
	warn  func(a ...any) string
	err   func(a ...any) string
	dim   func(a ...any) string
}

const defaultTokenURL = "http://localhost:8180/realms/oil/protocol/openid-connect/token"

type profile struct {
	BaseURL  string `yaml:"baseUrl"`
	TokenURL string `yaml:"tokenUrl"`
	ClientID string `yaml:"clientId"`
	Username string `yaml:"username"`
	Token    string `yaml:"token"`
}

type cliConfig struct {
	CurrentProfile string             `yaml:"currentProfile"`
	Profiles       map[string]profile `yaml:"profiles"`
}

func newUI() *ui {
	return &ui{
		title: color.New(color.FgHiCyan, color.Bold).SprintFunc(),
		ok:    color.New(color.FgGreen, color.Bold).SprintFunc(),
		info:  color.New(color.FgCyan).SprintFunc(),
		warn:  color.New(color.FgYellow).SprintFunc(),
		err:   color.New(color.FgRed, color.Bold).SprintFunc(),
		dim:   color.New(color.FgHiBlack).SprintFunc(),
	}
}

func (c *client) request(method, path string, body any) (int, []byte, error) {
	var buf *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		buf = bytes.NewReader(b)
	} else {
		buf = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, c.baseURL+path, buf)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, nil
}

func main() {
	baseURL := getenv("OIL_BASE_URL", "http://localhost:8080")
	token := getenv("OIL_TOKEN", "")
	tokenURL := getenv("OIL_TOKEN_URL", defaultTokenURL)
	clientID := getenv("OIL_CLIENT_ID", "oil-cli")
	profileName := getenv("OIL_PROFILE", "")
	ui := newUI()

	root := &cobra.Command{
		Use:   "oilctl",
		Short: "oil CLI",
		Long:  "oilctl manages oil price records and document uploads.",
	}
	root.SetHelpTemplate(helpTemplate(ui))
	root.SilenceUsage = true

	root.PersistentFlags().StringVar(&baseURL, "base-url", baseURL, "Base URL for the oil API")
	root.PersistentFlags().StringVar(&token, "token", token, "Bearer token (JWT)")
	root.PersistentFlags().StringVar(&tokenURL, "token-url", tokenURL, "Keycloak token endpoint")
	root.PersistentFlags().StringVar(&clientID, "client-id", clientID, "OAuth client id")
	root.PersistentFlags().StringVar(&profileName, "profile", profileName, "Config profile")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, _, _ := loadConfig()
		active := resolveProfileName(profileName, cfg)
		prof := cfg.Profiles[active]

		flags := cmd.Flags()
		if !flags.Changed("base-url") {
			if v := strings.TrimSpace(os.Getenv("OIL_BASE_URL")); v != "" {
				baseURL = v
			} else if prof.BaseURL != "" {
				baseURL = prof.BaseURL
			}
		}
		if !flags.Changed("token-url") {
			if v := strings.TrimSpace(os.Getenv("OIL_TOKEN_URL")); v != "" {
				tokenURL = v
			} else if prof.TokenURL != "" {
				tokenURL = prof.TokenURL
			}
		}
		if !flags.Changed("client-id") {
			if v := strings.TrimSpace(os.Getenv("OIL_CLIENT_ID")); v != "" {
				clientID = v
			} else if prof.ClientID != "" {
				clientID = prof.ClientID
			}
		}
		if !flags.Changed("token") {
			if v := strings.TrimSpace(os.Getenv("OIL_TOKEN")); v != "" {
				token = v
			} else if prof.Token != "" {
				token = prof.Token
			}
		}
		if !flags.Changed("profile") && profileName == "" && active != "" {
			profileName = active
		}
		return nil
	}

	root.AddCommand(initCmd(&profileName, &tokenURL, &clientID, ui))
	root.AddCommand(authCmd(&profileName, &tokenURL, &clientID, ui))
	root.AddCommand(oilCmd(&baseURL, &token, ui))
	root.AddCommand(uploadCmd(&baseURL, &token, ui))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.err("[ERROR]"), err.Error())
		os.Exit(1)
	}
}

func initCmd(profileName *string, tokenURL *string, clientID *string, ui *ui) *cobra.Command {
	var (
		baseURL  string
		tokURL   string
		cID      string
		noPrompt bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize CLI config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cfgPath, err := loadConfig()
			if err != nil {
				return err
			}
			active := resolveProfileName(*profileName, cfg)
			prof := cfg.Profiles[active]

			if baseURL == "" {
				baseURL = prof.BaseURL
			}
			if baseURL == "" {
				baseURL = "http://localhost:8080"
			}
			if tokURL == "" {
				tokURL = prof.TokenURL
			}
			if tokURL == "" {
				tokURL = *tokenURL
			}
			if cID == "" {
				cID = prof.ClientID
			}
			if cID == "" {
				cID = *clientID
			}

			if !noPrompt {
				reader := bufio.NewReader(os.Stdin)
				baseURL = prompt(reader, "Base URL", baseURL)
				tokURL = prompt(reader, "Token endpoint", tokURL)
				cID = prompt(reader, "Client id", cID)
			}

			prof.BaseURL = strings.TrimSpace(baseURL)
			prof.TokenURL = strings.TrimSpace(tokURL)
			prof.ClientID = strings.TrimSpace(cID)

			if cfg.Profiles == nil {
				cfg.Profiles = map[string]profile{}
			}
			cfg.Profiles[active] = prof
			if cfg.CurrentProfile == "" || *profileName != "" {
				cfg.CurrentProfile = active
			}

			if err := saveConfig(cfg, cfgPath); err != nil {
				return err
			}
			fmt.Printf("%s Initialized profile '%s' at %s\n", ui.ok("[OK]"), active, cfgPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Base URL for the oil API")
	cmd.Flags().StringVar(&tokURL, "token-url", "", "Keycloak token endpoint")
	cmd.Flags().StringVar(&cID, "client-id", "", "OAuth client id")
	cmd.Flags().BoolVar(&noPrompt, "no-prompt", false, "Disable interactive prompts")
	return cmd
}

func authCmd(profileName *string, tokenURL *string, clientID *string, ui *ui) *cobra.Command {
	auth := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored credentials",
	}

	var (
		loginUsername string
		loginPassword string
		loginURL      string
		loginClientID string
		noPrompt      bool
	)
	login := &cobra.Command{
		Use:   "login",
		Short: "Login via Keycloak and store token",
		RunE: func(cmd *cobra.Command, args []string) error {
			username := strings.TrimSpace(loginUsername)
			password := strings.TrimSpace(loginPassword)
			if username == "" && !noPrompt {
				reader := bufio.NewReader(os.Stdin)
				username = prompt(reader, "Username", "")
			}
			if password == "" && !noPrompt {
				p, err := promptSecret("Password")
				if err != nil {
					return err
				}
				password = p
			}
			if username == "" || password == "" {
				return errors.New("username and password are required")
			}

			cfg, cfgPath, err := loadConfig()
			if err != nil {
				return err
			}
			active := resolveProfileName(*profileName, cfg)
			if *profileName == "" {
				active = profileFromUsername(username)
			}
			prof := cfg.Profiles[active]
			if prof.TokenURL == "" {
				prof.TokenURL = *tokenURL
			}
			if prof.ClientID == "" {
				prof.ClientID = *clientID
			}
			if strings.TrimSpace(loginURL) != "" {
				prof.TokenURL = loginURL
			}
			if strings.TrimSpace(loginClientID) != "" {
				prof.ClientID = loginClientID
			}

			token, err := passwordGrant(prof.TokenURL, prof.ClientID, username, password)
			if err != nil {
				return err
			}
			prof.Username = username
			prof.Token = token

			if cfg.Profiles == nil {
				cfg.Profiles = map[string]profile{}
			}
			cfg.Profiles[active] = prof
			cfg.CurrentProfile = active
			if err := saveConfig(cfg, cfgPath); err != nil {
				return err
			}
			fmt.Printf("%s Logged in. Token stored for '%s'\n", ui.ok("[OK]"), active)
			return nil
		},
	}
	login.Flags().StringVar(&loginUsername, "username", "", "Username for login")
	login.Flags().StringVar(&loginPassword, "password", "", "Password for login")
	login.Flags().StringVar(&loginURL, "token-url", "", "Override token endpoint")
	login.Flags().StringVar(&loginClientID, "client-id", "", "Override OAuth client id")
	login.Flags().BoolVar(&noPrompt, "no-prompt", false, "Disable interactive prompts")

	var setToken string
	set := &cobra.Command{
		Use:   "set",
		Short: "Store a token in config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(setToken) == "" {
				return errors.New("provide --token")
			}
			cfg, cfgPath, err := loadConfig()
			if err != nil {
				return err
			}
			active := resolveProfileName(*profileName, cfg)
			prof := cfg.Profiles[active]
			prof.Token = strings.TrimSpace(setToken)
			if cfg.Profiles == nil {
				cfg.Profiles = map[string]profile{}
			}
			cfg.Profiles[active] = prof
			if cfg.CurrentProfile == "" || *profileName != "" {
				cfg.CurrentProfile = active
			}
			if err := saveConfig(cfg, cfgPath); err != nil {
				return err
			}
			fmt.Printf("%s Credentials updated for '%s'\n", ui.ok("[OK]"), active)
			return nil
		},
	}
	set.Flags().StringVar(&setToken, "token", "", "Bearer token (JWT)")

	show := &cobra.Command{
		Use:   "show",
		Short: "Show stored credentials (masked)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			active := resolveProfileName(*profileName, cfg)
			prof := cfg.Profiles[active]
			fmt.Printf("%s Profile: %s\n", ui.title("oilctl"), active)
			fmt.Printf("%s Base URL:  %s\n", ui.info("•"), emptyOr(prof.BaseURL, "<unset>"))
			fmt.Printf("%s Token URL: %s\n", ui.info("•"), emptyOr(prof.TokenURL, "<unset>"))
			fmt.Printf("%s Client id: %s\n", ui.info("•"), emptyOr(prof.ClientID, "<unset>"))
			fmt.Printf("%s Username:  %s\n", ui.info("•"), emptyOr(prof.Username, "<unset>"))
			fmt.Printf("%s Token:     %s\n", ui.info("•"), maskToken(prof.Token))
			return nil
		},
	}

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Clear stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cfgPath, err := loadConfig()
			if err != nil {
				return err
			}
			active := resolveProfileName(*profileName, cfg)
			prof := cfg.Profiles[active]
			prof.Token = ""
			cfg.Profiles[active] = prof
			if err := saveConfig(cfg, cfgPath); err != nil {
				return err
			}
			fmt.Printf("%s Token cleared for '%s'\n", ui.ok("[OK]"), active)
			return nil
		},
	}

	auth.AddCommand(login, set, show, clear)
	return auth
}

func oilCmd(baseURL, token *string, ui *ui) *cobra.Command {
	oil := &cobra.Command{
		Use:   "oil",
		Short: "Oil resource operations",
	}

	var (
		date        string
		price       float64
		oilType     string
		documentURL string
	)

	create := &cobra.Command{
		Use:     "create",
		Short:   "Create an oil resource",
		Example: "oilctl oil create --date 2026-01-15 --price 7.45 --type DIESEL",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(date) == "" {
				return errors.New("date is required")
			}
			c, err := newClient(*baseURL, *token)
			if err != nil {
				return err
			}
			body := map[string]any{
				"date":  date,
				"price": price,
			}
			if oilType != "" {
				body["type"] = strings.ToUpper(oilType)
			}
			if documentURL != "" {
				body["oil_document_url"] = documentURL
			}

			spin := spinner.New(spinner.CharSets[14], 120*time.Millisecond)
			spin.Suffix = " Creating oil resource..."
			spin.Start()
			status, resp, err := c.request("POST", "/api/v1/oil", body)
			spin.Stop()
			if err != nil {
				return err
			}
			if status >= 300 {
				return apiErr(status, resp)
			}
			var out oilResp
			if err := json.Unmarshal(resp, &out); err != nil {
				fmt.Println(string(resp))
				return nil
			}
			fmt.Printf("%s Oil resource created: %s\n", ui.ok("[OK]"), out.ID)
			return nil
		},
	}
	create.Flags().StringVar(&date, "date", "", "Price date (YYYY-MM-DD)")
	create.Flags().Float64Var(&price, "price", 0, "Price per unit")
	create.Flags().StringVar(&oilType, "type", "", "Oil type: PETROL|DIESEL|GAS")
	create.Flags().StringVar(&documentURL, "document-url", "", "Attached document URL")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Get an oil resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(*baseURL, *token)
			if err != nil {
				return err
			}
			spin := spinner.New(spinner.CharSets[14], 120*time.Millisecond)
			spin.Suffix = " Fetching oil resource..."
			spin.Start()
			status, resp, err := c.request("GET", "/api/v1/oil/"+url.PathEscape(args[0]), nil)
			spin.Stop()
			if err != nil {
				return err
			}
			if status >= 300 {
				return apiErr(status, resp)
			}
			fmt.Println(string(resp))
			return nil
		},
	}

	var (
		cursor string
		limit  int
		all    bool
	)
	list := &cobra.Command{
		Use:     "list",
		Short:   "List oil resources",
		Example: "oilctl oil list --limit 20",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(*baseURL, *token)
			if err != nil {
				return err
			}
			next := cursor
			for {
				q := url.Values{}
				if next != "" {
					q.Set("cursor", next)
				}
				if limit > 0 {
					q.Set("limit", fmt.Sprintf("%d", limit))
				}
				path := "/api/v1/oil"
				if len(q) > 0 {
					path += "?" + q.Encode()
				}
				status, resp, err := c.request("GET", path, nil)
				if err != nil {
					return err
				}
				if status >= 300 {
					return apiErr(status, resp)
				}
				var page pageResp
				if err := json.Unmarshal(resp, &page); err != nil {
					fmt.Println(string(resp))
					return nil
				}
				for _, it := range page.Items {
					doc := it.DocumentURL
					if doc == "" {
						doc = ui.dim("<no document>")
					}
					fmt.Printf("%s  %s  %-6s  %8.2f  %s\n", it.ID, it.Date, it.Type, it.Price, doc)
				}
				if !all || page.NextCursor == "" {
					if page.NextCursor != "" {
						fmt.Printf("%s next cursor: %s\n", ui.dim("→"), page.NextCursor)
					}
					return nil
				}
				next = page.NextCursor
			}
		},
	}
	list.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor")
	list.Flags().IntVar(&limit, "limit", 0, "Page size")
	list.Flags().BoolVar(&all, "all", false, "Follow cursors until the end")

	var (
		updDate  string
		updPrice float64
		updType  string
		updDoc   string
	)
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an oil resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{}
			if cmd.Flags().Changed("date") {
				body["date"] = updDate
			}
			if cmd.Flags().Changed("price") {
				body["price"] = updPrice
			}
			if cmd.Flags().Changed("type") {
				body["type"] = strings.ToUpper(updType)
			}
			if cmd.Flags().Changed("document-url") {
				body["oil_document_url"] = updDoc
			}
			if len(body) == 0 {
				return errors.New("provide at least one of --date, --price, --type, --document-url")
			}
			c, err := newClient(*baseURL, *token)
			if err != nil {
				return err
			}
			spin := spinner.New(spinner.CharSets[14], 120*time.Millisecond)
			spin.Suffix = " Updating oil resource..."
			spin.Start()
			status, resp, err := c.request("PUT", "/api/v1/oil/"+url.PathEscape(args[0]), body)
			spin.Stop()
			if err != nil {
				return err
			}
			if status >= 300 {
				return apiErr(status, resp)
			}
			fmt.Printf("%s Oil resource updated: %s\n", ui.ok("[OK]"), args[0])
			return nil
		},
	}
	update.Flags().StringVar(&updDate, "date", "", "Price date (YYYY-MM-DD)")
	update.Flags().Float64Var(&updPrice, "price", 0, "Price per unit")
	update.Flags().StringVar(&updType, "type", "", "Oil type: PETROL|DIESEL|GAS")
	update.Flags().StringVar(&updDoc, "document-url", "", "Attached document URL")

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an oil resource and its document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(*baseURL, *token)
			if err != nil {
				return err
			}
			spin := spinner.New(spinner.CharSets[14], 120*time.Millisecond)
			spin.Suffix = " Deleting oil resource..."
			spin.Start()
			status, resp, err := c.request("DELETE", "/api/v1/oil/"+url.PathEscape(args[0]), nil)
			spin.Stop()
			if err != nil {
				return err
			}
			if status >= 300 {
				return apiErr(status, resp)
			}
			fmt.Printf("%s Oil resource deleted: %s\n", ui.ok("[OK]"), args[0])
			return nil
		},
	}

	oil.AddCommand(create, get, list, update, del)
	return oil
}

func uploadCmd(baseURL, token *string, ui *ui) *cobra.Command {
	var (
		key         string
		contentType string
		attach      string
	)
	cmd := &cobra.Command{
		Use:     "upload <file>",
		Short:   "Upload a document via a pre-signed URL",
		Example: "oilctl upload invoice.pdf --attach 1b4e28ba-2fa1-11ec-8d3d-0242ac130003",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath := args[0]
			f, err := os.Open(filePath)
			if err != nil {
				return err
			}
			defer f.Close()
			stat, err := f.Stat()
			if err != nil {
				return err
			}

			if key == "" {
				key = filepath.Base(filePath)
			}
			if contentType == "" {
				contentType = "application/octet-stream"
			}

			c, err := newClient(*baseURL, *token)
			if err != nil {
				return err
			}
			spin := spinner.New(spinner.CharSets[14], 120*time.Millisecond)
			spin.Suffix = " Requesting upload URL..."
			spin.Start()
			status, resp, err := c.request("POST", "/api/v1/oil/upload-url", map[string]any{
				"key":      key,
				"metadata": map[string]string{"content-type": contentType},
			})
			spin.Stop()
			if err != nil {
				return err
			}
			if status >= 300 {
				return apiErr(status, resp)
			}
			var signed uploadURLResp
			if err := json.Unmarshal(resp, &signed); err != nil {
				return fmt.Errorf("invalid upload-url response: %w", err)
			}

			bar := progressbar.DefaultBytes(stat.Size(), "Uploading "+filepath.Base(filePath))
			req, err := http.NewRequest(signed.Method, signed.URL, io.TeeReader(f, bar))
			if err != nil {
				return err
			}
			req.ContentLength = stat.Size()
			req.Header.Set("Content-Type", contentType)
			for k, v := range signed.Metadata {
				req.Header.Set("x-amz-meta-"+k, v)
			}
			putResp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			defer putResp.Body.Close()
			if putResp.StatusCode >= 300 {
				out, _ := io.ReadAll(putResp.Body)
				return fmt.Errorf("upload failed (%d): %s", putResp.StatusCode, string(out))
			}
			fmt.Printf("%s Uploaded %s\n", ui.ok("[OK]"), signed.Key)
			fmt.Printf("%s %s\n", ui.info("•"), signed.PublicURL)

			if attach != "" {
				status, resp, err := c.request("PUT", "/api/v1/oil/"+url.PathEscape(attach), map[string]any{
					"oil_document_url": signed.PublicURL,
				})
				if err != nil {
					return err
				}
				if status >= 300 {
					return apiErr(status, resp)
				}
				fmt.Printf("%s Document attached to %s\n", ui.ok("[OK]"), attach)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "Object key (defaults to file name)")
	cmd.Flags().StringVar(&contentType, "content-type", "", "Content type of the upload")
	cmd.Flags().StringVar(&attach, "attach", "", "Oil resource id to attach the document to")
	return cmd
}

func newClient(baseURL, token string) (*client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("token is required (run `oilctl auth login` or set --token)")
	}
	return &client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func apiErr(status int, body []byte) error {
	var out apiError
	if err := json.Unmarshal(body, &out); err == nil && out.Message != "" {
		return fmt.Errorf("error (%d): %s", status, out.Message)
	}
	return fmt.Errorf("error (%d): %s", status, string(body))
}

func passwordGrant(tokenURL, clientID, username, password string) (string, error) {
	if strings.TrimSpace(tokenURL) == "" {
		return "", errors.New("token endpoint is not configured")
	}
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", clientID)
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequest(http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		out, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("login failed (%d): %s", resp.StatusCode, string(out))
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New("login returned empty token")
	}
	return out.AccessToken, nil
}

func promptSecret(label string) (string, error) {
	fmt.Printf("%s: ", label)
	b, err := termReadPassword()
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func termReadPassword() ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		return []byte(strings.TrimSpace(line)), err
	}
	return term.ReadPassword(fd)
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func helpTemplate(ui *ui) string {
	title := ui.title("oilctl")
	return fmt.Sprintf(`%s — CLI for the oil API

Usage:
  {{.UseLine}}

Commands:
{{range .Commands}}{{if (or .IsAvailableCommand .IsAdditionalHelpTopicCommand)}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

Flags:
  {{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

Global Flags:
  {{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

Config:
  %s

Examples:
  oilctl init
  oilctl auth login --username you@company.com
  oilctl oil create --date 2026-01-15 --price 7.45 --type DIESEL
  oilctl oil list --all
  oilctl upload invoice.pdf --attach <id>

`, title, configPath())
}

func configPath() string {
	if v := strings.TrimSpace(os.Getenv("OIL_CONFIG_DIR")); v != "" {
		return filepath.Join(v, "cli.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "./cli.yaml"
	}
	return filepath.Join(home, ".oilctl", "config.yaml")
}

func loadConfig() (cliConfig, string, error) {
	path := configPath()
	var cfg cliConfig
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cliConfig{Profiles: map[string]profile{}}, path, nil
		}
		return cfg, path, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, path, err
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]profile{}
	}
	return cfg, path, nil
}

func saveConfig(cfg cliConfig, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func resolveProfileName(flag string, cfg cliConfig) string {
	if strings.TrimSpace(flag) != "" {
		return strings.TrimSpace(flag)
	}
	if v := strings.TrimSpace(os.Getenv("OIL_PROFILE")); v != "" {
		return v
	}
	if cfg.CurrentProfile != "" {
		return cfg.CurrentProfile
	}
	return "default"
}

func profileFromUsername(username string) string {
	username = strings.TrimSpace(strings.ToLower(username))
	username = strings.ReplaceAll(username, "@", "_")
	username = strings.ReplaceAll(username, ".", "_")
	if username == "" {
		return "default"
	}
	return username
}

func prompt(r *bufio.Reader, label, def string) string {
	if def != "" {
		fmt.Printf("%s [%s]: ", label, def)
	} else {
		fmt.Printf("%s: ", label)
	}
	line, _ := r.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

func maskToken(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "<unset>"
	}
	if len(v) <= 8 {
		return "****"
	}
	return v[:4] + "..." + v[len(v)-4:]
}

func emptyOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
