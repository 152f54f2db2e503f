package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/hotelinfo/internal/model"
	"github.com/sells-group/hotelinfo/pkg/anthropic"
)

func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}
}

func richPages() []*model.ScrapedPage {
	return []*model.ScrapedPage{
		{
			URL:   "https://grandhotel.co.uk",
			Title: "The Grand Hotel Brighton",
			Text:  strings.Repeat("A landmark Victorian hotel on the Brighton seafront with 201 bedrooms. ", 5),
		},
		{
			URL:  "https://grandhotel.co.uk/contact",
			Text: "Call reception on 01273 224300.",
		},
	}
}

func grandQuery() model.HotelQuery {
	return model.HotelQuery{Name: "The Grand Hotel", City: "Brighton"}
}

func TestVerify_Match(t *testing.T) {
	mc := &anthropic.MockClient{}
	mc.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return strings.Contains(req.Messages[0].Content, "The Grand Hotel") &&
			strings.Contains(req.Messages[0].Content, "Brighton")
	})).Return(textResponse(`{"match": true, "confidence": 0.95, "reason": "site names the hotel and its address"}`), nil)

	s := NewService(mc, Config{Model: "test-model"})
	result, err := s.Verify(context.Background(), grandQuery(), richPages())
	require.NoError(t, err)
	assert.True(t, result.Match)
	assert.InDelta(t, 0.95, result.Confidence, 0.001)
	mc.AssertExpectations(t)
}

func TestVerify_NoMatch(t *testing.T) {
	mc := &anthropic.MockClient{}
	mc.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse(`{"match": false, "confidence": 0.9, "reason": "this is a booking aggregator"}`), nil)

	s := NewService(mc, Config{Model: "test-model"})
	result, err := s.Verify(context.Background(), grandQuery(), richPages())
	require.NoError(t, err)
	assert.False(t, result.Match)
}

func TestVerify_SparseContentPermissive(t *testing.T) {
	mc := &anthropic.MockClient{}

	s := NewService(mc, Config{Model: "test-model"})
	result, err := s.Verify(context.Background(), grandQuery(), []*model.ScrapedPage{
		{URL: "https://grandhotel.co.uk", Text: "Grand Hotel"},
	})
	require.NoError(t, err)
	assert.True(t, result.Match)
	assert.LessOrEqual(t, result.Confidence, 0.5)
	// No model call for content too thin to judge.
	mc.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestVerify_FencedJSON(t *testing.T) {
	mc := &anthropic.MockClient{}
	mc.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse("```json\n{\"match\": true, \"confidence\": 0.8, \"reason\": \"ok\"}\n```"), nil)

	s := NewService(mc, Config{Model: "test-model"})
	result, err := s.Verify(context.Background(), grandQuery(), richPages())
	require.NoError(t, err)
	assert.True(t, result.Match)
}

func TestExtract_ConfirmsPreExtraction(t *testing.T) {
	mc := &anthropic.MockClient{}
	mc.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		// Pre-extracted candidates are offered to the model.
		return strings.Contains(req.Messages[0].Content, "+441273224300") &&
			strings.Contains(req.Messages[0].Content, "rooms 201-201")
	})).Return(textResponse(`{
		"uk_contact_phone": "+441273224300",
		"phone_type": "landline",
		"phone_source_url": "https://grandhotel.co.uk/contact",
		"rooms_min": 201,
		"rooms_max": 201,
		"rooms_source_notes": "201 bedrooms overlooking the sea",
		"confidence": 0.92
	}`), nil)

	pre := &model.PreExtraction{
		Phones:       []model.ExtractedPhone{{Number: "+441273224300", Type: "landline", SourcePage: "https://grandhotel.co.uk/contact"}},
		RoomMentions: []model.RoomMention{{Min: 201, Max: 201, Weight: 2, Context: "201 bedrooms"}},
	}

	s := NewService(mc, Config{Model: "test-model"})
	ext, err := s.Extract(context.Background(), grandQuery(), richPages(), pre, "")
	require.NoError(t, err)
	require.NotNil(t, ext.UKContactPhone)
	assert.Equal(t, "+441273224300", *ext.UKContactPhone)
	require.NotNil(t, ext.RoomsMin)
	assert.Equal(t, 201, *ext.RoomsMin)
	assert.InDelta(t, 0.92, ext.Confidence, 0.001)
	mc.AssertExpectations(t)
}

func TestExtract_ForwardsSearchNotes(t *testing.T) {
	mc := &anthropic.MockClient{}
	mc.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return strings.Contains(req.Messages[0].Content, "The official site is grandhotel.co.uk with 201 rooms")
	})).Return(textResponse(`{"uk_contact_phone": null, "phone_type": null, "phone_source_url": null,
		"rooms_min": 201, "rooms_max": 201, "rooms_source_notes": null, "confidence": 0.8}`), nil)

	s := NewService(mc, Config{Model: "test-model"})
	notes := "The official site is grandhotel.co.uk with 201 rooms"
	ext, err := s.Extract(context.Background(), grandQuery(), richPages(), nil, notes)
	require.NoError(t, err)
	require.NotNil(t, ext.RoomsMin)
	assert.Equal(t, 201, *ext.RoomsMin)
	mc.AssertExpectations(t)
}

func TestExtract_NullFields(t *testing.T) {
	mc := &anthropic.MockClient{}
	mc.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse(`{"uk_contact_phone": null, "phone_type": null, "phone_source_url": null,
			"rooms_min": null, "rooms_max": null, "rooms_source_notes": null, "confidence": 0.4}`), nil)

	s := NewService(mc, Config{Model: "test-model"})
	ext, err := s.Extract(context.Background(), grandQuery(), richPages(), nil, "")
	require.NoError(t, err)
	assert.Nil(t, ext.UKContactPhone)
	assert.Nil(t, ext.RoomsMin)
}

func TestExtract_ModelFailureSurfaces(t *testing.T) {
	mc := &anthropic.MockClient{}
	mc.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, eris.New("api unavailable"))

	s := NewService(mc, Config{Model: "test-model", MaxRetries: 1})
	_, err := s.Extract(context.Background(), grandQuery(), richPages(), nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract details")
}

func TestExtract_MalformedJSON(t *testing.T) {
	mc := &anthropic.MockClient{}
	mc.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse("I could not find the information."), nil)

	s := NewService(mc, Config{Model: "test-model"})
	_, err := s.Extract(context.Background(), grandQuery(), richPages(), nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse extract response")
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"Sure, here it is: {\"a\": 1} Hope that helps!", `{"a": 1}`},
		{"no json at all", "no json at all"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanJSON(tt.in), "in=%q", tt.in)
	}
}
