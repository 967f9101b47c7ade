package common

const (
	RedisStreamTradeExecuted = "simulation.trade.executed"
	RedisStreamGroup         = "simulation-trade-consumers"

	RedisKeyLastPrice = "last_price:%s"

	ActionBuy  = "BUY"
	ActionSell = "SELL"
)
