package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Raisons passées au hook de redirection vers la connexion
const (
	RedirectMissingSession = "missing-session"
	RedirectSessionExpired = "session-expired"
)

const defaultTimeout = 30 * time.Second

// Header est l'unique forme acceptée pour les en-têtes d'une requête
type Header map[string]string

func (h Header) Set(key, value string) {
	h[http.CanonicalHeaderKey(key)] = value
}

func (h Header) Get(key string) string {
	key = http.CanonicalHeaderKey(key)
	for k, v := range h {
		if http.CanonicalHeaderKey(k) == key {
			return v
		}
	}
	return ""
}

// MultipartBody est un formulaire multipart ; son Content-Type (avec boundary) est posé par le Fetcher
type MultipartBody struct {
	buf bytes.Buffer
	w   *multipart.Writer
}

func NewMultipartBody() *MultipartBody {
	b := &MultipartBody{}
	b.w = multipart.NewWriter(&b.buf)
	return b
}

func (b *MultipartBody) Field(name, value string) error {
	return b.w.WriteField(name, value)
}

func (b *MultipartBody) File(field, filename string, r io.Reader) error {
	part, err := b.w.CreateFormFile(field, filename)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, r)
	return err
}

func (b *MultipartBody) ContentType() string {
	return b.w.FormDataContentType()
}

func (b *MultipartBody) reader() (io.Reader, error) {
	if err := b.w.Close(); err != nil {
		return nil, err
	}
	return &b.buf, nil
}

// RequestOptions : Body peut être nil, []byte, io.Reader, *MultipartBody ou une valeur encodée en JSON
type RequestOptions struct {
	Header Header
	Body   any
}

// LoginRedirect est appelé quand une connexion est nécessaire (session absente ou 401)
type LoginRedirect func(reason string)

// Fetcher construit les requêtes authentifiées vers l'API. Pas de cache, pas de nouvelle tentative.
type Fetcher struct {
	baseURL  string
	http     *http.Client
	dialer   *websocket.Dialer
	sessions SessionProvider
	onLogin  LoginRedirect
	log      zerolog.Logger
}

type FetcherOption func(*Fetcher)

func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.http = c }
}

func WithLoginRedirect(fn LoginRedirect) FetcherOption {
	return func(f *Fetcher) { f.onLogin = fn }
}

func WithLogger(log zerolog.Logger) FetcherOption {
	return func(f *Fetcher) { f.log = log }
}

func NewFetcher(baseURL string, sessions SessionProvider, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: defaultTimeout},
		dialer:   &websocket.Dialer{HandshakeTimeout: 10 * time.Second, Proxy: http.ProxyFromEnvironment},
		sessions: sessions,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fetcher) redirect(reason string) {
	if f.onLogin != nil {
		f.onLogin(reason)
	}
}

// token retourne le token de la session courante ou déclenche la redirection
func (f *Fetcher) token() (string, error) {
	s := f.sessions.Current()
	switch {
	case !s.hasToken():
		f.redirect(RedirectMissingSession)
		return "", ErrAuthorizationRequired
	case s.Expired():
		f.redirect(RedirectSessionExpired)
		return "", ErrAuthorizationRequired
	}
	return s.AccessToken, nil
}

// Do envoie une requête avec "Authorization: Bearer <token>". Un 401 ne renvoie pas de réponse
// mais ErrAuthorizationRequired, après avoir appelé le hook de connexion.
func (f *Fetcher) Do(ctx context.Context, method, path string, opts RequestOptions) (*http.Response, error) {
	token, err := f.token()
	if err != nil {
		return nil, err
	}

	resp, err := f.send(ctx, method, path, opts, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		f.redirect(RedirectSessionExpired)
		return nil, ErrAuthorizationRequired
	}
	return resp, nil
}

// DoJSON appelle Do puis décode la réponse JSON dans out (si non nil)
func (f *Fetcher) DoJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := f.Do(ctx, method, path, RequestOptions{Body: body})
	if err != nil {
		return err
	}
	return decode(resp, out)
}

// Public envoie une requête anonyme (catalogue, connexion) ; un 401 y est une RequestError ordinaire
func (f *Fetcher) Public(ctx context.Context, method, path string, body, out any) error {
	resp, err := f.send(ctx, method, path, RequestOptions{Body: body}, "")
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func (f *Fetcher) send(ctx context.Context, method, path string, opts RequestOptions, token string) (*http.Response, error) {
	body, contentType, err := encodeBody(opts.Body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, f.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("construction requête: %w", err)
	}

	for k, v := range opts.Header {
		req.Header.Set(k, v)
	}
	switch {
	case contentType != "":
		req.Header.Set("Content-Type", contentType)
	case opts.Header.Get("Content-Type") == "":
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		f.log.Error().Err(err).Str("method", method).Str("path", path).Msg("requête échouée")
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// encodeBody retourne aussi le Content-Type imposé par le corps (multipart)
func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case *MultipartBody:
		r, err := b.reader()
		return r, b.ContentType(), err
	case []byte:
		return bytes.NewReader(b), "", nil
	case io.Reader:
		return b, "", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", fmt.Errorf("encodage corps: %w", err)
		}
		return bytes.NewReader(data), "", nil
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}

// decode transforme un statut non-2xx en *RequestError avec le message du serveur quand il existe
func decode(resp *http.Response, out any) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("lecture réponse: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{Status: resp.StatusCode, Message: serverMessage(data, resp.StatusCode)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("décodage réponse: %w", err)
	}
	return nil
}

func serverMessage(data []byte, status int) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return "la requête a échoué (" + http.StatusText(status) + ")"
}

// Dial ouvre un websocket authentifié ; un refus 401 du handshake donne ErrAuthorizationRequired
func (f *Fetcher) Dial(ctx context.Context, path string) (*websocket.Conn, error) {
	token, err := f.token()
	if err != nil {
		return nil, err
	}

	url := "ws" + strings.TrimPrefix(f.baseURL, "http") + path
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, resp, err := f.dialer.DialContext(ctx, url, header)
	if resp != nil && resp.StatusCode == http.StatusUnauthorized {
		if conn != nil {
			conn.Close()
		}
		f.redirect(RedirectSessionExpired)
		return nil, ErrAuthorizationRequired
	}
	if err != nil {
		if errors.Is(err, websocket.ErrBadHandshake) && resp != nil {
			return nil, &RequestError{Status: resp.StatusCode, Message: "connexion websocket refusée"}
		}
		return nil, fmt.Errorf("websocket %s: %w", path, err)
	}
	return conn, nil
}
