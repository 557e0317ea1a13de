package referee

import (
	"errors"
	"net/http"
	"time"

	"github.com/danmuck/scorchedearth/internal/channel"
	"github.com/danmuck/scorchedearth/internal/observability"
	"github.com/danmuck/scorchedearth/internal/protocol"
	"github.com/danmuck/scorchedearth/internal/scorched"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type validateRequest struct {
	From     *protocol.HexPart `json:"from" binding:"required"`
	To       *protocol.HexPart `json:"to" binding:"required"`
	FromTurn uint64            `json:"from_turn"`
	ToTurn   uint64            `json:"to_turn"`
}

type openRequest struct {
	TurnNum uint64            `json:"turn_num"`
	State   *protocol.HexPart `json:"state" binding:"required"`
}

type turnRequest struct {
	TurnNum *uint64           `json:"turn_num"`
	State   *protocol.HexPart `json:"state" binding:"required"`
}

// ChannelInfo summarises a channel's latest state.
type ChannelInfo struct {
	ID          string `json:"id"`
	TurnNum     uint64 `json:"turn_num"`
	Turns       int    `json:"turns"`
	OutcomeHash string `json:"outcome_hash"`
	AppDataHash string `json:"app_data_hash"`
}

func channelInfo(id string, ch *channel.Channel) ChannelInfo {
	return receiptInfo(id, ch.Snapshot())
}

func receiptInfo(id string, r channel.Receipt) ChannelInfo {
	return ChannelInfo{
		ID:          id,
		TurnNum:     r.State.TurnNum,
		Turns:       r.Turns,
		OutcomeHash: r.State.OutcomeHash().Hex(),
		AppDataHash: r.State.AppDataHash().Hex(),
	}
}

func (s *Referee) handleValidate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	from, err := req.From.Decode()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	to, err := req.To.Decode()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	_, err = scorched.ValidTransition(from, to, req.FromTurn, req.ToTurn)
	elapsed := time.Since(start)
	if err != nil {
		v, ok := scorched.AsViolation(err)
		if !ok {
			observability.RecordTransition("http", observability.ResultInvalid, "", "", elapsed)
			c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": err.Error()})
			return
		}
		observability.RecordTransition("http", observability.ResultRejected, string(v.Class), v.Reason, elapsed)
		log.Debug().
			Str("request_id", observability.RequestIDFrom(c)).
			Str("class", string(v.Class)).
			Str("reason", v.Reason).
			Msg("transition rejected")
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"valid":  false,
			"class":  v.Class,
			"reason": v.Reason,
		})
		return
	}
	observability.RecordTransition("http", observability.ResultAccepted, "", "", elapsed)
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

func (s *Referee) handleListChannels(c *gin.Context) {
	ids := s.Channels.IDs()
	list := make([]ChannelInfo, 0, len(ids))
	for _, id := range ids {
		ch, err := s.Channels.Get(id)
		if err != nil {
			continue
		}
		list = append(list, channelInfo(id, ch))
	}
	c.JSON(http.StatusOK, gin.H{"channels": list})
}

func (s *Referee) handleOpenChannel(c *gin.Context) {
	var req openRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	part, err := req.State.Decode()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, ch, err := s.Channels.Open(protocol.State{TurnNum: req.TurnNum, VariablePart: part})
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrRegistryFull) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	log.Info().
		Str("referee", s.ID).
		Str("channel", id).
		Uint64("turn", req.TurnNum).
		Msg("channel opened")
	c.JSON(http.StatusCreated, channelInfo(id, ch))
}

func (s *Referee) handleGetChannel(c *gin.Context) {
	id := c.Param("id")
	ch, err := s.Channels.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, channelInfo(id, ch))
}

func (s *Referee) handleCloseChannel(c *gin.Context) {
	id := c.Param("id")
	if err := s.Channels.Close(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	log.Info().Str("referee", s.ID).Str("channel", id).Msg("channel closed")
	c.Status(http.StatusNoContent)
}

func (s *Referee) handleAppendTurn(c *gin.Context) {
	id := c.Param("id")
	ch, part, turnNum, ok := s.bindTurn(c, id)
	if !ok {
		return
	}

	var (
		r   channel.Receipt
		err error
	)
	if turnNum != nil {
		r, err = ch.AppendAt(protocol.State{TurnNum: *turnNum, VariablePart: part})
	} else {
		r, err = ch.Append(part)
	}
	if err != nil {
		writeTurnError(c, err)
		return
	}
	c.JSON(http.StatusOK, receiptInfo(id, r))
}

func (s *Referee) handleCheckTurn(c *gin.Context) {
	id := c.Param("id")
	ch, part, _, ok := s.bindTurn(c, id)
	if !ok {
		return
	}
	if err := ch.Check(part); err != nil {
		writeTurnError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "turn_num": ch.Latest().TurnNum + 1})
}

func (s *Referee) bindTurn(c *gin.Context, id string) (*channel.Channel, protocol.VariablePart, *uint64, bool) {
	ch, err := s.Channels.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, protocol.VariablePart{}, nil, false
	}
	var req turnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, protocol.VariablePart{}, nil, false
	}
	part, err := req.State.Decode()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, protocol.VariablePart{}, nil, false
	}
	return ch, part, req.TurnNum, true
}

func writeTurnError(c *gin.Context, err error) {
	if v, ok := scorched.AsViolation(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"valid":  false,
			"class":  v.Class,
			"reason": v.Reason,
		})
		return
	}
	if errors.Is(err, channel.ErrTurnNotAdjacent) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": err.Error()})
}
