package model

// Actor 是发起本次调用的用户身份，由接入层解析后显式传入每个 Service 方法。
// 零值即匿名访问者。
type Actor struct {
	userID uint
}

// Anonymous 返回匿名访问者
func Anonymous() Actor {
	return Actor{}
}

// ActorOf 返回指定用户身份的调用者
func ActorOf(userID uint) Actor {
	return Actor{userID: userID}
}

func (a Actor) UserID() uint {
	return a.userID
}

func (a Actor) IsAnonymous() bool {
	return a.userID == 0
}
