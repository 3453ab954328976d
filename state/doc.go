// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages the storage slots of the built-in accounts.
// It follows the flow as bellow:
//
//	          o
//	          |
//	 [ revertable state ]
//	          |
//	   [ stacked map ] -> [ journal ] -> [ bulk write ] -> [ kv store ]
//	          |
//	     [ lru cache ]
//	          |
//	     [ kv store ]
//
// Changes stay in memory until Commit, which flushes the latest value of
// every touched slot in one atomic batch.
package state
