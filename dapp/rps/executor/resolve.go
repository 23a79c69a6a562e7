// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package executor

import (
	rt "github.com/33cn/rps/dapp/rps/types"
)

// 每种出拳能赢的出拳
var beats = map[rt.Move]rt.Move{
	rt.Rock:     rt.Scissors,
	rt.Scissors: rt.Paper,
	rt.Paper:    rt.Rock,
}

// Resolve 石头赢剪刀, 剪刀赢布, 布赢石头, 相同为平局.
// 输入不是三种出拳之一时返回 OutcomeNone.
func Resolve(host, opponent rt.Move) rt.Outcome {
	if !host.Valid() || !opponent.Valid() {
		return rt.OutcomeNone
	}
	switch {
	case host == opponent:
		return rt.Tie
	case beats[host] == opponent:
		return rt.HostWins
	case beats[opponent] == host:
		return rt.OpponentWins
	}
	return rt.OutcomeNone
}
