package auth

import (
	"github.com/lcx/authlink/codec"
	"github.com/lcx/authlink/wire"
)

// Score is one score record.
type Score struct {
	ScoreID   uint32
	OwnerID   uint32
	CreatedMS uint64
	GameType  uint32
	Value     int32
	GameName  string
}

// Rank is one leaderboard row.
type Rank struct {
	Rank       uint32
	Score      int32
	PlayerName string
}

// ScoreCreateCallback receives the new score's id.
type ScoreCreateCallback func(res Result, serverCode uint32, scoreID uint32)

// ScoreCreate creates a score record for an owner.
func (cl *Client) ScoreCreate(ownerID uint32, gameName string, gameType uint32, value int32, cb ScoreCreateCallback) error {
	var code, scoreID uint32

	t := cl.newTrans("score_create", wire.Cli2Auth_ScoreCreate,
		func(w *codec.Writer) {
			w.Uint32(ownerID).
				String(gameName).
				Uint32(gameType).
				Uint32(uint32(value))
		},
		func(msgID uint32, r *codec.Reader) (bool, Result) {
			code = r.Uint32()
			scoreID = r.Uint32()
			if r.Err() != nil {
				return true, ResultProtocolError
			}
			return true, serverResult(code)
		},
		func(res Result) {
			cb(res, code, scoreID)
		})
	return cl.sendTrans(t)
}

// ScoreDelete removes a score record.
func (cl *Client) ScoreDelete(scoreID uint32, cb AccountCallback) error {
	return cl.sendSimpleAccountTrans("score_delete", wire.Cli2Auth_ScoreDelete,
		func(w *codec.Writer) {
			w.Uint32(scoreID)
		}, cb)
}

// ScoresCallback receives an owner's score records for one game.
type ScoresCallback func(res Result, serverCode uint32, scores []Score)

// ScoreGetScores retrieves an owner's scores for a game.
func (cl *Client) ScoreGetScores(ownerID uint32, gameName string, cb ScoresCallback) error {
	var code uint32
	var scores []Score

	t := cl.newTrans("score_get", wire.Cli2Auth_ScoreGetScores,
		func(w *codec.Writer) {
			w.Uint32(ownerID).String(gameName)
		},
		func(msgID uint32, r *codec.Reader) (bool, Result) {
			code = r.Uint32()
			count := r.Uint32()
			for i := uint32(0); i < count && r.Err() == nil; i++ {
				scores = append(scores, Score{
					ScoreID:   r.Uint32(),
					OwnerID:   r.Uint32(),
					CreatedMS: r.Uint64(),
					GameType:  r.Uint32(),
					Value:     int32(r.Uint32()),
					GameName:  r.String(),
				})
			}
			if r.Err() != nil {
				return true, ResultProtocolError
			}
			return true, serverResult(code)
		},
		func(res Result) {
			cb(res, code, scores)
		})
	return cl.sendTrans(t)
}

// ScoreAddPoints adds points to a score.
func (cl *Client) ScoreAddPoints(scoreID uint32, points int32, cb AccountCallback) error {
	return cl.sendSimpleAccountTrans("score_add_points", wire.Cli2Auth_ScoreAddPoints,
		func(w *codec.Writer) {
			w.Uint32(scoreID).Uint32(uint32(points))
		}, cb)
}

// ScoreTransferPoints moves points between two scores atomically on the
// server.
func (cl *Client) ScoreTransferPoints(srcScoreID, dstScoreID uint32, points int32, cb AccountCallback) error {
	return cl.sendSimpleAccountTrans("score_transfer_points", wire.Cli2Auth_ScoreTransferPoints,
		func(w *codec.Writer) {
			w.Uint32(srcScoreID).
				Uint32(dstScoreID).
				Uint32(uint32(points))
		}, cb)
}

// ScoreSetPoints overwrites a score's value.
func (cl *Client) ScoreSetPoints(scoreID uint32, points int32, cb AccountCallback) error {
	return cl.sendSimpleAccountTrans("score_set_points", wire.Cli2Auth_ScoreSetPoints,
		func(w *codec.Writer) {
			w.Uint32(scoreID).Uint32(uint32(points))
		}, cb)
}

// RanksCallback receives one leaderboard page.
type RanksCallback func(res Result, serverCode uint32, ranks []Rank)

// ScoreGetRanks retrieves a leaderboard page.
func (cl *Client) ScoreGetRanks(ownerID, scoreGroup, parentFolderID uint32, gameName string, timePeriod, numResults, pageNumber uint32, sortDesc bool, cb RanksCallback) error {
	var code uint32
	var ranks []Rank
	var sortFlag uint32
	if sortDesc {
		sortFlag = 1
	}

	t := cl.newTrans("score_get_ranks", wire.Cli2Auth_ScoreGetRanks,
		func(w *codec.Writer) {
			w.Uint32(ownerID).
				Uint32(scoreGroup).
				Uint32(parentFolderID).
				String(gameName).
				Uint32(timePeriod).
				Uint32(numResults).
				Uint32(pageNumber).
				Uint32(sortFlag)
		},
		func(msgID uint32, r *codec.Reader) (bool, Result) {
			code = r.Uint32()
			count := r.Uint32()
			for i := uint32(0); i < count && r.Err() == nil; i++ {
				ranks = append(ranks, Rank{
					Rank:       r.Uint32(),
					Score:      int32(r.Uint32()),
					PlayerName: r.String(),
				})
			}
			if r.Err() != nil {
				return true, ResultProtocolError
			}
			return true, serverResult(code)
		},
		func(res Result) {
			cb(res, code, ranks)
		})
	return cl.sendTrans(t)
}
