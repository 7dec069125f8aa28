// Package contexto is the HTTP client for the Contexto puzzle service.
//
// Every lookup is keyed by puzzle id and language. Failures never surface as
// errors to the game: they become game.Unavailable results.
package contexto

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/guesstheword/internal/game"
)

// DefaultBaseURL is the public Contexto API.
const DefaultBaseURL = "https://api.contexto.me"

// Client calls the Contexto API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a client for baseURL with the given request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Guess ranks word against puzzle id.
func (c *Client) Guess(ctx context.Context, id int, word string, lang game.Language) game.Result {
	return c.lookup(ctx, lang, "game", strconv.Itoa(id), url.PathEscape(word))
}

// Hint returns the word at the given distance from the answer.
func (c *Client) Hint(ctx context.Context, id, distance int, lang game.Language) game.Result {
	return c.lookup(ctx, lang, "tip", strconv.Itoa(id), strconv.Itoa(distance))
}

// GiveUp returns the answer of puzzle id.
func (c *Client) GiveUp(ctx context.Context, id int, lang game.Language) game.Result {
	return c.lookup(ctx, lang, "giveup", strconv.Itoa(id))
}

// ClosestWords returns the words closest to the answer, closest first.
func (c *Client) ClosestWords(ctx context.Context, id int, lang game.Language) ([]string, error) {
	var out struct {
		Words []string `json:"words"`
	}
	if err := c.get(ctx, c.endpoint(lang, "top", strconv.Itoa(id)), &out); err != nil {
		return nil, err
	}
	return out.Words, nil
}

func (c *Client) lookup(ctx context.Context, lang game.Language, parts ...string) game.Result {
	var a game.Answer
	if err := c.get(ctx, c.endpoint(lang, parts...), &a); err != nil {
		log.Debug().Err(err).Strs("path", parts).Str("lang", string(lang)).Msg("contexto lookup failed")
		return game.Unavailable(err)
	}
	if a.Word == "" {
		return game.Unavailable(fmt.Errorf("contexto: empty answer for %s", strings.Join(parts, "/")))
	}
	return game.Found(a)
}

func (c *Client) endpoint(lang game.Language, parts ...string) string {
	return c.BaseURL + "/machado/" + string(lang) + "/" + strings.Join(parts, "/")
}

// errorBody is the shape of Contexto error responses, e.g. unknown words.
type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("contexto: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		if eb.Error != "" {
			return fmt.Errorf("contexto: %d: %s", resp.StatusCode, eb.Error)
		}
		return fmt.Errorf("contexto: unexpected status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("contexto: decode: %w", err)
	}
	return nil
}
