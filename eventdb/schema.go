// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

// amounts are 32 bytes big-endian, time is unix seconds.
const eventTableSchema = `
create table if not exists event (
	seq integer primary key autoincrement,
	kind text not null,
	account blob(20) not null,
	amount blob(32),
	net blob(32),
	fee blob(32),
	reward blob(32),
	accRewardPerShare blob(32),
	totalStaked blob(32),
	stakingFeeBps integer,
	unstakingFeeBps integer,
	time integer not null
);

CREATE INDEX if not exists accountIndex on event(account);
CREATE INDEX if not exists kindIndex on event(kind);
CREATE INDEX if not exists timeIndex on event(time);
`

const eventColumns = "seq, kind, account, amount, net, fee, reward, accRewardPerShare, totalStaked, stakingFeeBps, unstakingFeeBps, time"
