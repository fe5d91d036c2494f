package auction

//
//                 +-----------+  now >= BiddingDeadline   +----------+
//   NewRound ---> |  Bidding  +-------------------------> |  Reveal  |
//      ^          +-----------+                           +----+-----+
//      |            commit()                                   |   reveal()
//      |                                                        | now >= RevealDeadline
//      |                                                        v   (任意调用者或Ticker触发结算)
//  +---+-------+  now >= NextRoundStart                   +-----------+
//  |  Pending  | <----------------------------------------+  Settled  |
//  +-----------+     (RevealDeadline + NextRoundDelay)    +-----------+
//                                                           finalize() / reconfigure()

//AuctionState - 拍卖状态机，所有对外操作的入口
//	- RoundState - 当前轮次：截止时间、承诺集合、揭示集合、下一轮的参数
//	- state.State - 账本上已经结算部分的摘要
//	- SettlementExecutor - 计算结果（纯函数）并把资金去向写入账本
//		- Ledger - 押金、余额、归档的结果
//	- Clock - 时间来源，阶段完全由 当前时间 vs 截止时间 决定
//	- scheduler.Ticker - 可选，没有外部调用时按时推进状态机
//
//每个对外操作先读一次时钟，补齐所有到期的状态转移（可能跨越多轮），再执行操作本身
