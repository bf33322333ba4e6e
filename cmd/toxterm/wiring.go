package main

import (
	"log"

	"toxterm/internal/network"
)

// wireCallbacks binds every network.Core callback setter to its matching
// window.Dispatcher method, grounded on rustyguts-bken/client/app.go's
// wireSessionCallbacks (one Set call per event, each a short closure). Self
// connection status has no per-num target, so the dispatcher fans it out
// by window kind to the prompt and friend-list windows rather than through
// a ByNum lookup (see Dispatcher.DispatchSelfConnectionStatus).
func (a *app) wireCallbacks() {
	d := a.dispatcher
	c := a.core

	c.SetOnSelfConnectionStatus(d.DispatchSelfConnectionStatus)
	c.SetOnFriendConnectionStatus(func(friendNumber uint32, status network.ConnStatus) {
		cameUp := false
		if f := a.friends.Get(friendNumber); f != nil {
			cameUp = f.Conn == network.ConnNone && status != network.ConnNone
			f.Conn = status
			a.friends.Rebuild()
		}
		if cameUp {
			if err := a.avatars.BroadcastTo(friendNumber); err != nil {
				log.Printf("[avatar] send to friend %d: %v", friendNumber, err)
			}
		}
		d.DispatchFriendConnectionChange(friendNumber, status)
	})
	c.SetOnFriendMessage(d.DispatchFriendMessage)
	c.SetOnFriendName(func(friendNumber uint32, name string) {
		if f := a.friends.Get(friendNumber); f != nil {
			f.Name = name
			a.friends.Rebuild()
		}
		d.DispatchFriendName(friendNumber, name)
	})
	c.SetOnFriendStatus(d.DispatchFriendStatus)
	c.SetOnFriendStatusMessage(func(friendNumber uint32, msg string) {
		if f := a.friends.Get(friendNumber); f != nil {
			f.StatusMsg = msg
		}
		d.DispatchFriendStatusMessage(friendNumber, msg)
	})
	c.SetOnFriendRequest(d.DispatchFriendRequest)
	c.SetOnFriendTyping(d.DispatchFriendTyping)
	c.SetOnFriendReadReceipt(d.DispatchReadReceipt)
	c.SetOnLosslessPacket(func(friendNumber uint32, data []byte) {})

	c.SetOnConferenceMessage(d.DispatchConferenceMessage)
	c.SetOnConferenceInvite(d.DispatchConferenceInvite)
	c.SetOnConferencePeerListChanged(d.DispatchConferenceNameListChange)
	c.SetOnConferencePeerName(d.DispatchConferencePeerName)
	c.SetOnConferenceTitle(d.DispatchConferenceTitle)

	c.SetOnGroupInvite(d.DispatchGroupInvite)

	c.SetOnFileChunkRequest(d.DispatchFileChunkRequest)
	c.SetOnFileRecvChunk(d.DispatchFileRecvChunk)
	c.SetOnFileControl(d.DispatchFileControl)
	c.SetOnFileRecv(d.DispatchFileRecv)

	c.SetOnGroupMessage(d.DispatchGroupMessage)
	c.SetOnGroupPrivateMessage(d.DispatchGroupPrivateMessage)
	c.SetOnGroupPeerJoin(d.DispatchGroupPeerJoin)
	c.SetOnGroupPeerExit(d.DispatchGroupPeerExit)
	c.SetOnGroupTopic(d.DispatchGroupTopic)
	c.SetOnGroupPeerLimit(d.DispatchGroupPeerLimit)
	c.SetOnGroupPrivacyState(d.DispatchGroupPrivacyState)
	c.SetOnGroupTopicLock(d.DispatchGroupTopicLock)
	c.SetOnGroupPassword(d.DispatchGroupPassword)
	c.SetOnGroupNickChange(d.DispatchGroupNickChange)
	c.SetOnGroupStatusChange(d.DispatchGroupStatusChange)
	c.SetOnGroupSelfJoin(d.DispatchGroupSelfJoin)
	c.SetOnGroupRejected(d.DispatchGroupRejected)
	c.SetOnGroupModeration(d.DispatchGroupModeration)
	c.SetOnGroupVoiceState(d.DispatchGroupVoiceState)

	c.SetOnCallState(d.DispatchCallState)
}
