package synodrive

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/imroc/req/v3"
	"github.com/synotools/synoexport/internal/utils"
	"github.com/synotools/synoexport/internal/version"
)

const (
	authPath  = "/webapi/auth.cgi"
	entryPath = "/webapi/entry.cgi"

	authAPI  = "SYNO.API.Auth"
	filesAPI = "SYNO.SynologyDrive.Files"
	teamAPI  = "SYNO.SynologyDrive.TeamFolders"

	// driveSession scopes the DSM session to the Drive application.
	driveSession = "SynologyDrive"
)

var userAgent = fmt.Sprintf("%s/%s (%s; %s; %s)", version.Command, version.Version, version.Revision, runtime.GOOS, runtime.GOARCH)

// deviceID identifies this machine to DSM across sessions. Best-effort; an
// empty id just omits the login parameter.
var deviceID, _ = machineid.ProtectedID(version.Command)

// Options tune the HTTP client. The zero value is usable.
type Options struct {
	// Insecure skips TLS certificate verification. Home NAS boxes commonly
	// run self-signed certs.
	Insecure bool

	// Timeout bounds each HTTP request. Zero means no limit.
	Timeout time.Duration
}

// Client talks to the Synology Drive webapi of one DSM host.
type Client struct {
	http *req.Client
	sid  string
}

// New builds a client for serverURL (e.g. https://nas.local:5001). No
// network traffic happens until Login.
func New(serverURL string, opts *Options) (*Client, error) {
	if serverURL == "" {
		return nil, ErrNoServerURL
	}
	if opts == nil {
		opts = &Options{}
	}

	httpClient := req.C().
		SetBaseURL(strings.TrimRight(serverURL, "/")).
		SetCommonRetryCount(3).
		SetCommonRetryFixedInterval(1 * time.Second).
		SetUserAgent(userAgent).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal)

	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}
	if opts.Insecure {
		httpClient.EnableInsecureSkipVerify()
	}

	return &Client{http: httpClient}, nil
}

// Login opens a Drive session and attaches its sid to all later calls.
func (c *Client) Login(ctx context.Context, username, password string) error {
	params := map[string]string{
		"api":     authAPI,
		"version": "3",
		"method":  "login",
		"account": username,
		"passwd":  password,
		"session": driveSession,
		"format":  "sid",
	}
	if deviceID != "" {
		params["device_name"] = version.AppName
		params["device_id"] = deviceID
	}

	var data loginData
	if err := c.call(ctx, "login", authPath, params, &data); err != nil {
		return err
	}

	c.sid = data.SID
	c.http.SetCommonQueryParam("_sid", data.SID)
	slog.Debug("drive session established", "user", username, "sid", utils.MaskSecret(data.SID))
	return nil
}

// Logout tears down the Drive session. Safe to call when not logged in.
func (c *Client) Logout(ctx context.Context) error {
	if c.sid == "" {
		return nil
	}

	params := map[string]string{
		"api":     authAPI,
		"version": "3",
		"method":  "logout",
		"session": driveSession,
	}
	if err := c.call(ctx, "logout", authPath, params, nil); err != nil {
		return err
	}

	c.sid = ""
	return nil
}

func (c *Client) requireSession() error {
	if c.sid == "" {
		return ErrNotLoggedIn
	}
	return nil
}

// call performs one webapi GET and decodes the envelope's data payload into
// out (skipped when out is nil).
func (c *Client) call(ctx context.Context, op, endpoint string, params map[string]string, out any) error {
	var env apiEnvelope

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetSuccessResult(&env).
		Get(endpoint)

	if err := checkResponse(res, err, op, &env); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if env.Data == nil {
		return fmt.Errorf("synodrive: %s: response has no data", op)
	}
	if err := jsonUnmarshal(env.Data, out); err != nil {
		return fmt.Errorf("synodrive: %s: failed to decode response: %w", op, err)
	}
	return nil
}
