// Package plm talks to the Infor Fashion PLM OData API through ION.
package plm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Style is one record of the OData Style entity set with its colorways expanded.
// Identifier fields are pointers because the remote system returns nulls for
// incomplete records and those must stay distinguishable from zero.
type Style struct {
	StyleID       int        `json:"StyleId"`
	StyleCode     string     `json:"StyleCode"`
	BrandID       *int       `json:"BrandId"`
	DivisionID    *int       `json:"DivisionId"`
	SubCategoryID *int       `json:"ProductSubSubCategoryId"`
	Status        int        `json:"Status"`
	SeasonID      *int       `json:"SeasonId"`
	Colorways     []Colorway `json:"StyleColorways"`
}

// DraftStatus marks a style that has not been released yet.
const DraftStatus = 1

// IsDraft reports whether the style is still a draft.
func (s Style) IsDraft() bool {
	return s.Status == DraftStatus
}

// Colorway is one colour variant of a style.
type Colorway struct {
	Code string `json:"Code"`
	Name string `json:"Name"`
	// SegmentTag comes from ColorwayUserField4 and names the life-style group.
	SegmentTag *string `json:"ColorwayUserField4"`
	ThemeID    *int    `json:"ThemeId"`
}

// UnmarshalJSON accepts ColorwayUserField4 as either a string or a number.
func (c *Colorway) UnmarshalJSON(data []byte) error {
	var aux struct {
		Code       *string         `json:"Code"`
		Name       *string         `json:"Name"`
		SegmentTag json.RawMessage `json:"ColorwayUserField4"`
		ThemeID    *int            `json:"ThemeId"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	tag, err := decodeText(aux.SegmentTag)
	if err != nil {
		return fmt.Errorf("ColorwayUserField4: %w", err)
	}

	*c = Colorway{SegmentTag: tag, ThemeID: aux.ThemeID}
	if aux.Code != nil {
		c.Code = *aux.Code
	}
	if aux.Name != nil {
		c.Name = *aux.Name
	}
	return nil
}

// StyleSummary is the projection used for single style lookups.
type StyleSummary struct {
	StyleID   int    `json:"StyleId"`
	StyleCode string `json:"StyleCode"`
	// PreviousSeasonCode comes from UserDefinedField7Id.
	PreviousSeasonCode *string `json:"UserDefinedField7Id"`
}

// UnmarshalJSON accepts UserDefinedField7Id as either a string or a number.
func (s *StyleSummary) UnmarshalJSON(data []byte) error {
	var aux struct {
		StyleID   int             `json:"StyleId"`
		StyleCode *string         `json:"StyleCode"`
		UDF7      json.RawMessage `json:"UserDefinedField7Id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	udf7, err := decodeText(aux.UDF7)
	if err != nil {
		return fmt.Errorf("UserDefinedField7Id: %w", err)
	}

	*s = StyleSummary{StyleID: aux.StyleID, PreviousSeasonCode: udf7}
	if aux.StyleCode != nil {
		s.StyleCode = *aux.StyleCode
	}
	return nil
}

// decodeText turns a JSON string or number into text; null and absent become nil.
func decodeText(raw json.RawMessage) (*string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return &s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("expected string or number, got %s", string(raw))
	}
	s := n.String()
	return &s, nil
}

// Token is a cached OAuth access token.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Expiry      time.Time `json:"expiry"`
}

func (t *Token) validFor(now time.Time, margin time.Duration) bool {
	return t != nil && t.AccessToken != "" && now.Add(margin).Before(t.Expiry)
}

// Header renders the value of an Authorization header.
func (t *Token) Header() string {
	tokenType := strings.TrimSpace(t.TokenType)
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return tokenType + " " + t.AccessToken
}

// TokenInfo describes the cached token without exposing it.
type TokenInfo struct {
	HasToken   bool       `json:"hasToken"`
	IsValid    bool       `json:"isValid"`
	ExpiryTime *time.Time `json:"expiryTime"`
	TokenType  string     `json:"tokenType,omitempty"`
}
