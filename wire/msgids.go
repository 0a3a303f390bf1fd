package wire

// Client-to-auth message ids. Appended only, never renumbered.
const (
	Cli2Auth_PingRequest uint32 = iota
	Cli2Auth_ClientRegisterRequest
	Cli2Auth_AcctExistsRequest
	Cli2Auth_AcctLoginRequest
	Cli2Auth_AcctSetPlayerRequest
	Cli2Auth_AcctCreateRequest
	Cli2Auth_AcctCreateFromKeyRequest
	Cli2Auth_AcctChangePasswordRequest
	Cli2Auth_AcctSetRolesRequest
	Cli2Auth_AcctSetBillingTypeRequest
	Cli2Auth_AcctActivateRequest
	Cli2Auth_PlayerCreateRequest
	Cli2Auth_PlayerDeleteRequest
	Cli2Auth_UpgradeVisitorRequest
	Cli2Auth_SetPlayerBanStatusRequest
	Cli2Auth_KickPlayer
	Cli2Auth_ChangePlayerNameRequest
	Cli2Auth_SendFriendInviteRequest
	Cli2Auth_VaultNodeCreate
	Cli2Auth_VaultNodeFetch
	Cli2Auth_VaultNodeSave
	Cli2Auth_VaultNodeAdd
	Cli2Auth_VaultNodeRemove
	Cli2Auth_VaultFetchNodeRefs
	Cli2Auth_VaultNodeFind
	Cli2Auth_VaultInitAgeRequest
	Cli2Auth_AgeRequest
	Cli2Auth_FileListRequest
	Cli2Auth_FileDownloadRequest
	Cli2Auth_FileDownloadChunkAck
	Cli2Auth_GetPublicAgeList
	Cli2Auth_ScoreCreate
	Cli2Auth_ScoreDelete
	Cli2Auth_ScoreGetScores
	Cli2Auth_ScoreAddPoints
	Cli2Auth_ScoreTransferPoints
	Cli2Auth_ScoreSetPoints
	Cli2Auth_ScoreGetRanks
)

// Auth-to-client message ids. Appended only, never renumbered.
const (
	Auth2Cli_PingReply uint32 = iota
	Auth2Cli_ClientRegisterReply
	Auth2Cli_AcctExistsReply
	Auth2Cli_AcctLoginReply
	Auth2Cli_AcctPlayerInfo
	Auth2Cli_AcctSetPlayerReply
	Auth2Cli_AcctCreateReply
	Auth2Cli_AcctCreateFromKeyReply
	Auth2Cli_AcctChangePasswordReply
	Auth2Cli_AcctSetRolesReply
	Auth2Cli_AcctSetBillingTypeReply
	Auth2Cli_AcctActivateReply
	Auth2Cli_PlayerCreateReply
	Auth2Cli_PlayerDeleteReply
	Auth2Cli_UpgradeVisitorReply
	Auth2Cli_SetPlayerBanStatusReply
	Auth2Cli_ChangePlayerNameReply
	Auth2Cli_SendFriendInviteReply
	Auth2Cli_VaultNodeCreated
	Auth2Cli_VaultNodeFetched
	Auth2Cli_VaultNodeSaved
	Auth2Cli_VaultNodeAdded2
	Auth2Cli_VaultNodeRemoved2
	Auth2Cli_VaultNodeRefsFetched
	Auth2Cli_VaultNodeFindReply
	Auth2Cli_VaultInitAgeReply
	Auth2Cli_AgeReply
	Auth2Cli_FileListReply
	Auth2Cli_FileDownloadChunk
	Auth2Cli_PublicAgeList
	Auth2Cli_ScoreCreateReply
	Auth2Cli_ScoreDeleteReply
	Auth2Cli_ScoreGetScoresReply
	Auth2Cli_ScoreAddPointsReply
	Auth2Cli_ScoreTransferPointsReply
	Auth2Cli_ScoreSetPointsReply
	Auth2Cli_ScoreGetRanksReply

	// Unsolicited pushes.
	Auth2Cli_VaultNodeChanged
	Auth2Cli_VaultNodeAdded
	Auth2Cli_VaultNodeRemoved
	Auth2Cli_VaultNodeDeleted
	Auth2Cli_NotifyNewBuild
	Auth2Cli_PropagateBuffer
	Auth2Cli_KickedOff
)

var cli2AuthNames = map[uint32]string{
	Cli2Auth_PingRequest:               "Cli2Auth_PingRequest",
	Cli2Auth_ClientRegisterRequest:     "Cli2Auth_ClientRegisterRequest",
	Cli2Auth_AcctExistsRequest:         "Cli2Auth_AcctExistsRequest",
	Cli2Auth_AcctLoginRequest:          "Cli2Auth_AcctLoginRequest",
	Cli2Auth_AcctSetPlayerRequest:      "Cli2Auth_AcctSetPlayerRequest",
	Cli2Auth_AcctCreateRequest:         "Cli2Auth_AcctCreateRequest",
	Cli2Auth_AcctCreateFromKeyRequest:  "Cli2Auth_AcctCreateFromKeyRequest",
	Cli2Auth_AcctChangePasswordRequest: "Cli2Auth_AcctChangePasswordRequest",
	Cli2Auth_AcctSetRolesRequest:       "Cli2Auth_AcctSetRolesRequest",
	Cli2Auth_AcctSetBillingTypeRequest: "Cli2Auth_AcctSetBillingTypeRequest",
	Cli2Auth_AcctActivateRequest:       "Cli2Auth_AcctActivateRequest",
	Cli2Auth_PlayerCreateRequest:       "Cli2Auth_PlayerCreateRequest",
	Cli2Auth_PlayerDeleteRequest:       "Cli2Auth_PlayerDeleteRequest",
	Cli2Auth_UpgradeVisitorRequest:     "Cli2Auth_UpgradeVisitorRequest",
	Cli2Auth_SetPlayerBanStatusRequest: "Cli2Auth_SetPlayerBanStatusRequest",
	Cli2Auth_KickPlayer:                "Cli2Auth_KickPlayer",
	Cli2Auth_ChangePlayerNameRequest:   "Cli2Auth_ChangePlayerNameRequest",
	Cli2Auth_SendFriendInviteRequest:   "Cli2Auth_SendFriendInviteRequest",
	Cli2Auth_VaultNodeCreate:           "Cli2Auth_VaultNodeCreate",
	Cli2Auth_VaultNodeFetch:            "Cli2Auth_VaultNodeFetch",
	Cli2Auth_VaultNodeSave:             "Cli2Auth_VaultNodeSave",
	Cli2Auth_VaultNodeAdd:              "Cli2Auth_VaultNodeAdd",
	Cli2Auth_VaultNodeRemove:           "Cli2Auth_VaultNodeRemove",
	Cli2Auth_VaultFetchNodeRefs:        "Cli2Auth_VaultFetchNodeRefs",
	Cli2Auth_VaultNodeFind:             "Cli2Auth_VaultNodeFind",
	Cli2Auth_VaultInitAgeRequest:       "Cli2Auth_VaultInitAgeRequest",
	Cli2Auth_AgeRequest:                "Cli2Auth_AgeRequest",
	Cli2Auth_FileListRequest:           "Cli2Auth_FileListRequest",
	Cli2Auth_FileDownloadRequest:       "Cli2Auth_FileDownloadRequest",
	Cli2Auth_FileDownloadChunkAck:      "Cli2Auth_FileDownloadChunkAck",
	Cli2Auth_GetPublicAgeList:          "Cli2Auth_GetPublicAgeList",
	Cli2Auth_ScoreCreate:               "Cli2Auth_ScoreCreate",
	Cli2Auth_ScoreDelete:               "Cli2Auth_ScoreDelete",
	Cli2Auth_ScoreGetScores:            "Cli2Auth_ScoreGetScores",
	Cli2Auth_ScoreAddPoints:            "Cli2Auth_ScoreAddPoints",
	Cli2Auth_ScoreTransferPoints:       "Cli2Auth_ScoreTransferPoints",
	Cli2Auth_ScoreSetPoints:            "Cli2Auth_ScoreSetPoints",
	Cli2Auth_ScoreGetRanks:             "Cli2Auth_ScoreGetRanks",
}

var auth2CliNames = map[uint32]string{
	Auth2Cli_PingReply:                "Auth2Cli_PingReply",
	Auth2Cli_ClientRegisterReply:      "Auth2Cli_ClientRegisterReply",
	Auth2Cli_AcctExistsReply:          "Auth2Cli_AcctExistsReply",
	Auth2Cli_AcctLoginReply:           "Auth2Cli_AcctLoginReply",
	Auth2Cli_AcctPlayerInfo:           "Auth2Cli_AcctPlayerInfo",
	Auth2Cli_AcctSetPlayerReply:       "Auth2Cli_AcctSetPlayerReply",
	Auth2Cli_AcctCreateReply:          "Auth2Cli_AcctCreateReply",
	Auth2Cli_AcctCreateFromKeyReply:   "Auth2Cli_AcctCreateFromKeyReply",
	Auth2Cli_AcctChangePasswordReply:  "Auth2Cli_AcctChangePasswordReply",
	Auth2Cli_AcctSetRolesReply:        "Auth2Cli_AcctSetRolesReply",
	Auth2Cli_AcctSetBillingTypeReply:  "Auth2Cli_AcctSetBillingTypeReply",
	Auth2Cli_AcctActivateReply:        "Auth2Cli_AcctActivateReply",
	Auth2Cli_PlayerCreateReply:        "Auth2Cli_PlayerCreateReply",
	Auth2Cli_PlayerDeleteReply:        "Auth2Cli_PlayerDeleteReply",
	Auth2Cli_UpgradeVisitorReply:      "Auth2Cli_UpgradeVisitorReply",
	Auth2Cli_SetPlayerBanStatusReply:  "Auth2Cli_SetPlayerBanStatusReply",
	Auth2Cli_ChangePlayerNameReply:    "Auth2Cli_ChangePlayerNameReply",
	Auth2Cli_SendFriendInviteReply:    "Auth2Cli_SendFriendInviteReply",
	Auth2Cli_VaultNodeCreated:         "Auth2Cli_VaultNodeCreated",
	Auth2Cli_VaultNodeFetched:         "Auth2Cli_VaultNodeFetched",
	Auth2Cli_VaultNodeSaved:           "Auth2Cli_VaultNodeSaved",
	Auth2Cli_VaultNodeAdded2:          "Auth2Cli_VaultNodeAdded2",
	Auth2Cli_VaultNodeRemoved2:        "Auth2Cli_VaultNodeRemoved2",
	Auth2Cli_VaultNodeRefsFetched:     "Auth2Cli_VaultNodeRefsFetched",
	Auth2Cli_VaultNodeFindReply:       "Auth2Cli_VaultNodeFindReply",
	Auth2Cli_VaultInitAgeReply:        "Auth2Cli_VaultInitAgeReply",
	Auth2Cli_AgeReply:                 "Auth2Cli_AgeReply",
	Auth2Cli_FileListReply:            "Auth2Cli_FileListReply",
	Auth2Cli_FileDownloadChunk:        "Auth2Cli_FileDownloadChunk",
	Auth2Cli_PublicAgeList:            "Auth2Cli_PublicAgeList",
	Auth2Cli_ScoreCreateReply:         "Auth2Cli_ScoreCreateReply",
	Auth2Cli_ScoreDeleteReply:         "Auth2Cli_ScoreDeleteReply",
	Auth2Cli_ScoreGetScoresReply:      "Auth2Cli_ScoreGetScoresReply",
	Auth2Cli_ScoreAddPointsReply:      "Auth2Cli_ScoreAddPointsReply",
	Auth2Cli_ScoreTransferPointsReply: "Auth2Cli_ScoreTransferPointsReply",
	Auth2Cli_ScoreSetPointsReply:      "Auth2Cli_ScoreSetPointsReply",
	Auth2Cli_ScoreGetRanksReply:       "Auth2Cli_ScoreGetRanksReply",
	Auth2Cli_VaultNodeChanged:         "Auth2Cli_VaultNodeChanged",
	Auth2Cli_VaultNodeAdded:           "Auth2Cli_VaultNodeAdded",
	Auth2Cli_VaultNodeRemoved:         "Auth2Cli_VaultNodeRemoved",
	Auth2Cli_VaultNodeDeleted:         "Auth2Cli_VaultNodeDeleted",
	Auth2Cli_NotifyNewBuild:           "Auth2Cli_NotifyNewBuild",
	Auth2Cli_PropagateBuffer:          "Auth2Cli_PropagateBuffer",
	Auth2Cli_KickedOff:                "Auth2Cli_KickedOff",
}

// Cli2AuthName returns the symbolic name of an outbound message id.
func Cli2AuthName(msgID uint32) string {
	if name, ok := cli2AuthNames[msgID]; ok {
		return name
	}
	return "Cli2Auth_Unknown"
}

// Auth2CliName returns the symbolic name of an inbound message id.
func Auth2CliName(msgID uint32) string {
	if name, ok := auth2CliNames[msgID]; ok {
		return name
	}
	return "Auth2Cli_Unknown"
}
